package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, ts *testServer, target string, body map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSignup(t *testing.T) {
	ts := newTestServer(t)

	t.Run("creates account and session", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/signup/", map[string]string{
			"username": "leo",
			"email":    "leo@example.com",
			"password": "SecurePass12!",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var payload struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		cookies := resp.Cookies()
		decodeBody(t, resp, &payload)
		assert.NotEmpty(t, payload.Token)
		assert.Equal(t, "leo", payload.User.Username)

		var sessionSet bool
		for _, cookie := range cookies {
			if cookie.Name == "session" && cookie.Value != "" {
				sessionSet = true
			}
		}
		assert.True(t, sessionSet, "signup must set the session cookie")
	})

	t.Run("rejects weak password", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/signup/", map[string]string{
			"username": "anna",
			"email":    "anna@example.com",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/signup/", map[string]string{
			"username": "leo2",
			"email":    "leo@example.com",
			"password": "SecurePass12!",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rejects reserved username", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/signup/", map[string]string{
			"username": "profile",
			"email":    "profile@example.com",
			"password": "SecurePass12!",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "leo", false)

	t.Run("valid credentials", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/login/", map[string]string{
			"email":    "leo@example.com",
			"password": "SecurePass12!",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var payload struct {
			Token string `json:"token"`
		}
		decodeBody(t, resp, &payload)
		assert.NotEmpty(t, payload.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/login/", map[string]string{
			"email":    "leo@example.com",
			"password": "WrongPass12!",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := postJSON(t, ts, "/auth/login/", map[string]string{
			"email":    "ghost@example.com",
			"password": "SecurePass12!",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLoginPage_EchoesNext(t *testing.T) {
	ts := newTestServer(t)

	var payload struct {
		Next string `json:"next"`
	}
	resp := ts.getJSON(t, "/auth/login/?next=%2Fcreate%2F", "", &payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/create/", payload.Next)
}

func TestLogout_ClearsSessionCookie(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "leo", false)
	token := ts.tokenFor(t, user.ID)

	resp := ts.request(t, http.MethodPost, "/auth/logout/", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session" && cookie.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}

func TestSessionCookieAuthenticates(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "leo", false)
	token := ts.tokenFor(t, user.ID)

	req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "session cookie must authenticate the follow feed")
}

func TestAnonymousRedirectCarriesNext(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/follow/", "", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(location, "/auth/login/?next="), "got %q", location)
	assert.Contains(t, location, "%2Ffollow%2F")
}
