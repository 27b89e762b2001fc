package seed

import (
	"fmt"
	"os"

	"quill/internal/middleware"
	"quill/internal/models"

	"gorm.io/gorm"
	"gopkg.in/yaml.v3"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumComments int
	NumFollows  int
	ShouldClean bool
	// PresetPath points at a YAML preset describing the groups to create.
	// Empty means the built-in defaults.
	PresetPath string
}

// Preset is the YAML shape of a seeding preset.
type Preset struct {
	Groups []struct {
		Title       string `yaml:"title"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
	} `yaml:"groups"`
}

// defaultPreset seeds a handful of groups when no preset file is given.
var defaultPreset = Preset{
	Groups: []struct {
		Title       string `yaml:"title"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
	}{
		{Title: "Technology", Slug: "tech", Description: "Hardware, software and everything between"},
		{Title: "Books", Slug: "books", Description: "What we are reading"},
		{Title: "Travel", Slug: "travel", Description: "Places worth writing about"},
		{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen experiments"},
	},
}

// Seed populates the database with demo data: users, groups, posts spread
// over the past weeks, comments and follow edges.
func Seed(db *gorm.DB, opts Options) error {
	log := middleware.Logger

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	preset, err := loadPreset(opts.PresetPath)
	if err != nil {
		return err
	}

	factory := NewFactory(db)

	groups := make([]*models.Group, 0, len(preset.Groups))
	for _, g := range preset.Groups {
		group, err := factory.CreateGroup(g.Title, g.Slug, g.Description)
		if err != nil {
			return fmt.Errorf("failed to create group %q: %w", g.Slug, err)
		}
		groups = append(groups, group)
	}
	log.Info("seeded groups", "count", len(groups))

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Info("seeded users", "count", len(users))
	if len(users) == 0 {
		return nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[factory.rand.Intn(len(users))]
		// Roughly a third of posts stay ungrouped.
		var group *models.Group
		if len(groups) > 0 && factory.rand.Intn(3) != 0 {
			group = groups[factory.rand.Intn(len(groups))]
		}
		post, err := factory.CreatePost(author, group)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Info("seeded posts", "count", len(posts))

	for i := 0; i < opts.NumComments && len(posts) > 0; i++ {
		author := users[factory.rand.Intn(len(users))]
		post := posts[factory.rand.Intn(len(posts))]
		if _, err := factory.CreateComment(author, post); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}
	log.Info("seeded comments", "count", opts.NumComments)

	for i := 0; i < opts.NumFollows; i++ {
		user := users[factory.rand.Intn(len(users))]
		author := users[factory.rand.Intn(len(users))]
		if err := factory.CreateFollow(user, author); err != nil {
			return fmt.Errorf("failed to create follow: %w", err)
		}
	}
	log.Info("seeded follows", "requested", opts.NumFollows)

	return nil
}

func loadPreset(path string) (*Preset, error) {
	if path == "" {
		preset := defaultPreset
		return &preset, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset %q: %w", path, err)
	}
	var preset Preset
	if err := yaml.Unmarshal(raw, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset %q: %w", path, err)
	}
	return &preset, nil
}

func clearData(db *gorm.DB) error {
	// Children first so foreign keys never block the wipe.
	for _, model := range []any{
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.Group{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
