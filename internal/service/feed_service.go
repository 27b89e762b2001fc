// Package service contains the business logic for the application.
package service

import (
	"context"

	"quill/internal/cache"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
)

// PageSize is the fixed number of posts on every feed page.
const PageSize = 10

// Page is one page of a reverse-chronological feed.
type Page struct {
	Posts    []*models.Post `json:"posts"`
	Number   int            `json:"page"`
	Size     int            `json:"page_size"`
	NumPages int            `json:"total_pages"`
	Total    int64          `json:"total"`
	HasNext  bool           `json:"has_next"`
	HasPrev  bool           `json:"has_previous"`
}

// Profile is an author page: the user, follower stats and one page of posts.
type Profile struct {
	User       *models.User `json:"user"`
	PostsCount int64        `json:"posts_count"`
	Followers  int64        `json:"followers_count"`
	Following  int64        `json:"following_count"`
	IsFollower bool         `json:"is_follower"`
	Page       *Page        `json:"page"`
}

// FeedService composes the index, group, profile and follow feeds.
type FeedService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// Index returns one page of the sitewide feed. Pages are served through the
// fragment cache, so within the TTL a page may lag the store.
func (s *FeedService) Index(ctx context.Context, page int) (*Page, error) {
	page = normalizePage(page)

	result := &Page{}
	hit, err := cache.CacheAside(ctx, cache.IndexPageKey(page), result, cache.IndexFragmentTTL, func() error {
		fresh, err := s.page(ctx, page,
			func(limit, offset int) ([]*models.Post, error) { return s.postRepo.List(ctx, limit, offset) },
			func() (int64, error) { return s.postRepo.Count(ctx) },
		)
		if err != nil {
			return err
		}
		*result = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		middleware.FragmentCacheHits.WithLabelValues("hit").Inc()
	} else {
		middleware.FragmentCacheHits.WithLabelValues("miss").Inc()
	}
	return result, nil
}

// GroupFeed returns the group plus one page of its posts. Unknown slugs are
// a not-found error, never an empty feed.
func (s *FeedService) GroupFeed(ctx context.Context, slug string, page int) (*models.Group, *Page, error) {
	group, err := s.groupRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.page(ctx, normalizePage(page),
		func(limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListByGroup(ctx, group.ID, limit, offset)
		},
		func() (int64, error) { return s.postRepo.CountByGroup(ctx, group.ID) },
	)
	if err != nil {
		return nil, nil, err
	}
	return group, p, nil
}

// ProfileFeed returns the author page for username. viewerID is zero for
// anonymous visitors; IsFollower is always false for them.
func (s *FeedService) ProfileFeed(ctx context.Context, username string, viewerID uint, page int) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	p, err := s.page(ctx, normalizePage(page),
		func(limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListByAuthor(ctx, user.ID, limit, offset)
		},
		func() (int64, error) { return s.postRepo.CountByAuthor(ctx, user.ID) },
	)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollower := false
	if viewerID != 0 && viewerID != user.ID {
		isFollower, err = s.followRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &Profile{
		User:       user,
		PostsCount: p.Total,
		Followers:  followers,
		Following:  following,
		IsFollower: isFollower,
		Page:       p,
	}, nil
}

// FollowFeed returns one page of posts by authors the user follows. A user
// following nobody gets an empty first page, not an error.
func (s *FeedService) FollowFeed(ctx context.Context, userID uint, page int) (*Page, error) {
	return s.page(ctx, normalizePage(page),
		func(limit, offset int) ([]*models.Post, error) {
			return s.postRepo.ListByFollowed(ctx, userID, limit, offset)
		},
		func() (int64, error) { return s.postRepo.CountByFollowed(ctx, userID) },
	)
}

// page assembles one Page from a list/count pair. Pages past the end come
// back empty with the pagination metadata still correct.
func (s *FeedService) page(
	ctx context.Context,
	page int,
	list func(limit, offset int) ([]*models.Post, error),
	count func() (int64, error),
) (*Page, error) {
	total, err := count()
	if err != nil {
		return nil, err
	}

	posts, err := list(PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	numPages := int((total + PageSize - 1) / PageSize)
	if numPages == 0 {
		numPages = 1
	}

	return &Page{
		Posts:    posts,
		Number:   page,
		Size:     PageSize,
		NumPages: numPages,
		Total:    total,
		HasNext:  page < numPages,
		HasPrev:  page > 1,
	}, nil
}

// normalizePage clamps non-positive page numbers to the first page.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
