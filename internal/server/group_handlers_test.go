package server

import (
	"fmt"
	"net/http"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupAdminEndpoints(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "root", true)
	regular := ts.createUser(t, "leo", false)
	adminToken := ts.tokenFor(t, admin.ID)

	t.Run("non-admin is forbidden", func(t *testing.T) {
		resp := postJSONAuth(t, ts, "/api/admin/groups/", ts.tokenFor(t, regular.ID), map[string]string{
			"title": "Cats", "slug": "cats",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		resp := postJSONAuth(t, ts, "/api/admin/groups/", "", map[string]string{
			"title": "Cats", "slug": "cats",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin creates a group", func(t *testing.T) {
		resp := postJSONAuth(t, ts, "/api/admin/groups/", adminToken, map[string]string{
			"title": "Cats", "slug": "cats", "description": "All about cats",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var group models.Group
		decodeBody(t, resp, &group)
		assert.Equal(t, "Cats", group.Title)
		assert.NotZero(t, group.ID)
	})

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		resp := postJSONAuth(t, ts, "/api/admin/groups/", adminToken, map[string]string{
			"title": "More Cats", "slug": "cats",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("bad slug is rejected", func(t *testing.T) {
		resp := postJSONAuth(t, ts, "/api/admin/groups/", adminToken, map[string]string{
			"title": "Dogs", "slug": "Dogs!",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("group with posts resists deletion", func(t *testing.T) {
		var group models.Group
		require.NoError(t, ts.db.Where("slug = ?", "cats").First(&group).Error)
		post := ts.createPost(t, regular.ID, "a cat post", &group.ID)

		resp := ts.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/groups/%d", group.ID), adminToken, nil, "")
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		// Still listed.
		var count int64
		ts.db.Model(&models.Group{}).Count(&count)
		assert.Equal(t, int64(1), count)

		// Once the post is gone the group can go too.
		require.NoError(t, ts.db.Delete(&models.Post{}, post.ID).Error)
		resp = ts.request(t, http.MethodDelete, fmt.Sprintf("/api/admin/groups/%d", group.ID), adminToken, nil, "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		ts.db.Model(&models.Group{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("deleting a missing group is 404", func(t *testing.T) {
		resp := ts.request(t, http.MethodDelete, "/api/admin/groups/999", adminToken, nil, "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestListGroups(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.createUser(t, "root", true)
	ts.createGroup(t, "Zebras", "zebras")
	ts.createGroup(t, "Cats", "cats")

	var payload struct {
		Groups []models.Group `json:"groups"`
	}
	resp := ts.getJSON(t, "/api/admin/groups/", ts.tokenFor(t, admin.ID), &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, payload.Groups, 2)
	assert.Equal(t, "Cats", payload.Groups[0].Title, "groups are ordered by title")
}
