package service

import (
	"context"
	"errors"

	"quill/internal/cache"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"
)

// PostService provides post business logic.
type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	isAdmin   func(ctx context.Context, userID uint) (bool, error)
}

// CreatePostInput carries a validated post form. Image is the stored media
// path, already written by the media service, or "".
type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    string
}

// UpdatePostInput carries an edit to an existing post. A nil GroupID clears
// the group; the author and publication date never change.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Text    string
	GroupID *uint
	Image   string
}

// DeletePostInput identifies the post to remove and who is asking.
type DeletePostInput struct {
	UserID uint
	PostID uint
}

// NewPostService returns a new PostService. isAdmin may be nil; then only
// authors can delete their posts.
func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		isAdmin:   isAdmin,
	}
}

// CreatePost validates the form, resolves the optional group and stores the
// post. The first index page fragment is dropped so the new post shows up
// there without waiting out the TTL.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	text, err := validation.PostText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		Image:    in.Image,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	middleware.PostsCreated.Inc()
	cache.InvalidateIndexPage(ctx, 1)

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns one post with author, group and comment count loaded.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost applies an author-only edit. The text and group are replaced
// wholesale; a new image path replaces the old one, an empty one keeps it.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("Only the author can edit this post")
	}

	text, err := validation.PostText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = in.GroupID
	if in.Image != "" {
		post.Image = in.Image
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	cache.InvalidateIndexPage(ctx, 1)

	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post and its comments. Allowed for the author and
// for admins.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}

	if post.AuthorID != in.UserID {
		admin := false
		if s.isAdmin != nil {
			admin, err = s.isAdmin(ctx, in.UserID)
			if err != nil {
				return err
			}
		}
		if !admin {
			return models.NewUnauthorizedError("Only the author can delete this post")
		}
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}

	cache.InvalidateIndexPage(ctx, 1)
	return nil
}

// checkGroup verifies the referenced group exists. Nil means no group. An
// unknown group is a form error, not a missing resource.
func (s *PostService) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return models.NewValidationError("Unknown group")
		}
		return err
	}
	return nil
}
