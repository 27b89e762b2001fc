package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

// FollowService provides follow/unfollow business logic. Follow edges are
// directed; following is not mutual.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow subscribes the user to the author's posts. Following an author
// twice and following yourself are both silent no-ops.
func (s *FollowService) Follow(ctx context.Context, userID uint, authorUsername string) error {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == userID {
		return nil
	}
	return s.followRepo.Create(ctx, userID, author.ID)
}

// Unfollow removes the subscription. Unfollowing an author the user never
// followed is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, authorUsername string) error {
	author, err := s.userRepo.GetByUsername(ctx, authorUsername)
	if err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, userID, author.ID)
}

// IsFollowing reports whether the user follows the author.
func (s *FollowService) IsFollowing(ctx context.Context, userID uint, author *models.User) (bool, error) {
	if userID == 0 || author == nil || author.ID == userID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, author.ID)
}
