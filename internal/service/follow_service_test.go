package service

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn         func(context.Context, uint, uint) error
	deleteFn         func(context.Context, uint, uint) error
	existsFn         func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, userID, authorID uint) error {
	return s.createFn(ctx, userID, authorID)
}
func (s *followRepoStub) Delete(ctx context.Context, userID, authorID uint) error {
	return s.deleteFn(ctx, userID, authorID)
}
func (s *followRepoStub) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	return s.existsFn(ctx, userID, authorID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return s.countFollowersFn(ctx, authorID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(_ context.Context, _, _ uint) error { return nil },
		deleteFn:         func(_ context.Context, _, _ uint) error { return nil },
		existsFn:         func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

func TestFollowService_Follow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates the edge", func(t *testing.T) {
		t.Parallel()
		var gotUser, gotAuthor uint
		followRepo := noopFollowRepo()
		followRepo.createFn = func(_ context.Context, userID, authorID uint) error {
			gotUser, gotAuthor = userID, authorID
			return nil
		}
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 7, Username: username}, nil
		}

		svc := NewFollowService(followRepo, userRepo)
		require.NoError(t, svc.Follow(ctx, 3, "leo"))
		assert.Equal(t, uint(3), gotUser)
		assert.Equal(t, uint(7), gotAuthor)
	})

	t.Run("self follow is a no-op", func(t *testing.T) {
		t.Parallel()
		created := false
		followRepo := noopFollowRepo()
		followRepo.createFn = func(_ context.Context, _, _ uint) error {
			created = true
			return nil
		}
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 3, Username: username}, nil
		}

		svc := NewFollowService(followRepo, userRepo)
		require.NoError(t, svc.Follow(ctx, 3, "leo"))
		assert.False(t, created, "self follow must not create an edge")
	})

	t.Run("unknown author propagates not found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", username)
		}

		svc := NewFollowService(noopFollowRepo(), userRepo)
		err := svc.Follow(ctx, 3, "ghost")
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestFollowService_Unfollow(t *testing.T) {
	t.Parallel()

	var gotUser, gotAuthor uint
	followRepo := noopFollowRepo()
	followRepo.deleteFn = func(_ context.Context, userID, authorID uint) error {
		gotUser, gotAuthor = userID, authorID
		return nil
	}
	userRepo := noopUserRepo()
	userRepo.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		return &models.User{ID: 7, Username: username}, nil
	}

	svc := NewFollowService(followRepo, userRepo)
	require.NoError(t, svc.Unfollow(context.Background(), 3, "leo"))
	assert.Equal(t, uint(3), gotUser)
	assert.Equal(t, uint(7), gotAuthor)
}

func TestFollowService_IsFollowing(t *testing.T) {
	t.Parallel()

	followRepo := noopFollowRepo()
	followRepo.existsFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
	svc := NewFollowService(followRepo, noopUserRepo())
	ctx := context.Background()

	t.Run("anonymous viewer", func(t *testing.T) {
		t.Parallel()
		got, err := svc.IsFollowing(ctx, 0, &models.User{ID: 7})
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("own profile", func(t *testing.T) {
		t.Parallel()
		got, err := svc.IsFollowing(ctx, 7, &models.User{ID: 7})
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("existing edge", func(t *testing.T) {
		t.Parallel()
		got, err := svc.IsFollowing(ctx, 3, &models.User{ID: 7})
		require.NoError(t, err)
		assert.True(t, got)
	})
}
