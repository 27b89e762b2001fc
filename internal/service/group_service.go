package service

import (
	"context"
	"regexp"
	"strings"

	"quill/internal/models"
	"quill/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// GroupService provides group business logic. Create and Delete are admin
// operations; listing and lookup are public.
type GroupService struct {
	groupRepo repository.GroupRepository
}

// CreateGroupInput carries a new group definition.
type CreateGroupInput struct {
	Title       string
	Slug        string
	Description string
}

// NewGroupService returns a new GroupService.
func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// ListGroups returns all groups ordered by title.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

// GetGroup returns the group with the given slug.
func (s *GroupService) GetGroup(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

// CreateGroup validates and stores a new group. Slugs are lowercase
// hyphenated identifiers and must be unique.
func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > 200 {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if !slugPattern.MatchString(in.Slug) {
		return nil, models.NewValidationError("Slug must be lowercase letters, digits and hyphens")
	}

	if existing, err := s.groupRepo.GetBySlug(ctx, in.Slug); err == nil && existing != nil {
		return nil, models.NewConflictError("A group with this slug already exists")
	}

	group := &models.Group{
		Title:       title,
		Slug:        in.Slug,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes an empty group. Groups still referenced by posts are
// protected; reassign or delete the posts first.
func (s *GroupService) DeleteGroup(ctx context.Context, id uint) error {
	if _, err := s.groupRepo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.groupRepo.CountPosts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return models.NewConflictError("Group still has posts attached")
	}

	return s.groupRepo.Delete(ctx, id)
}
