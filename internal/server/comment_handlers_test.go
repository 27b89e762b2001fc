package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	ts := newTestServer(t)
	author := ts.createUser(t, "leo", false)
	commenter := ts.createUser(t, "anna", false)
	post := ts.createPost(t, author.ID, "worth commenting on", nil)

	commentURL := fmt.Sprintf("/posts/%d/comment/", post.ID)
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	t.Run("anonymous is redirected to login without a comment", func(t *testing.T) {
		body, contentType := formBody("text", "drive-by")
		resp := ts.request(t, http.MethodPost, commentURL, "", body, contentType)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/auth/login/?next="))

		var count int64
		ts.db.Model(&models.Comment{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("logged-in comment lands on the detail page", func(t *testing.T) {
		body, contentType := formBody("text", "insightful")
		resp := ts.request(t, http.MethodPost, commentURL, ts.tokenFor(t, commenter.ID), body, contentType)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, detailURL, resp.Header.Get("Location"))

		var comment models.Comment
		require.NoError(t, ts.db.First(&comment).Error)
		assert.Equal(t, "insightful", comment.Text)
		assert.Equal(t, commenter.ID, comment.AuthorID)
		assert.Equal(t, post.ID, comment.PostID)
	})

	t.Run("empty comment is rejected", func(t *testing.T) {
		body, contentType := formBody("text", "")
		resp := ts.request(t, http.MethodPost, commentURL, ts.tokenFor(t, commenter.ID), body, contentType)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("commenting on a missing post is 404", func(t *testing.T) {
		body, contentType := formBody("text", "into the void")
		resp := ts.request(t, http.MethodPost, "/posts/999/comment/", ts.tokenFor(t, commenter.ID), body, contentType)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
