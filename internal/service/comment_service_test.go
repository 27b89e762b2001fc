package service

import (
	"context"
	"strings"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
	}
}

func TestCommentService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopPostRepo())
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, AddCommentInput{AuthorID: 1, PostID: 1})
		assertValidationError(t, err)
	})

	t.Run("whitespace only text", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, AddCommentInput{AuthorID: 1, PostID: 1, Text: " \n "})
		assertValidationError(t, err)
	})

	t.Run("text too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, AddCommentInput{
			AuthorID: 1,
			PostID:   1,
			Text:     strings.Repeat("x", 10001),
		})
		assertValidationError(t, err)
	})

	t.Run("missing post propagates not found", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc2 := NewCommentService(noopCommentRepo(), postRepo)
		_, err := svc2.AddComment(ctx, AddCommentInput{AuthorID: 1, PostID: 99, Text: "hi"})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestCommentService_AddComment_Success(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, Text: "nice", AuthorID: 1, PostID: 5}, nil
	}

	svc := NewCommentService(commentRepo, noopPostRepo())
	comment, err := svc.AddComment(context.Background(), AddCommentInput{
		AuthorID: 1,
		PostID:   5,
		Text:     "  nice  ",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, "nice", comment.Text)
}

func TestCommentService_ListComments(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.listByPostFn = func(_ context.Context, postID uint) ([]models.Comment, error) {
		return []models.Comment{{ID: 1, PostID: postID}, {ID: 2, PostID: postID}}, nil
	}

	svc := NewCommentService(commentRepo, noopPostRepo())
	comments, err := svc.ListComments(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}
