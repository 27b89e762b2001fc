package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func initTestConfig() {
	InitMiddleware(&config.Config{JWTSecret: testSecret, Env: "test"})
}

func signToken(t *testing.T, sub string, ttl time.Duration, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// echoApp mounts a handler behind the given middleware that reports the
// resolved user ID.
func echoApp(mw fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/probe", mw, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("userID").(uint)
		return c.JSON(fiber.Map{"user_id": userID})
	})
	return app
}

func TestPrincipal_SourcesAndValidity(t *testing.T) {
	initTestConfig()
	app := fiber.New()

	var gotID uint
	var gotOK bool
	app.Get("/probe", func(c *fiber.Ctx) error {
		gotID, gotOK = Principal(c)
		return c.SendStatus(http.StatusOK)
	})

	probe := func(t *testing.T, decorate func(*http.Request)) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if decorate != nil {
			decorate(req)
		}
		_, err := app.Test(req, -1)
		require.NoError(t, err)
	}

	t.Run("bearer header", func(t *testing.T) {
		probe(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "42", time.Hour, testSecret))
		})
		assert.True(t, gotOK)
		assert.Equal(t, uint(42), gotID)
	})

	t.Run("session cookie", func(t *testing.T) {
		probe(t, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, "7", time.Hour, testSecret)})
		})
		assert.True(t, gotOK)
		assert.Equal(t, uint(7), gotID)
	})

	t.Run("anonymous", func(t *testing.T) {
		probe(t, nil)
		assert.False(t, gotOK)
	})

	t.Run("expired token", func(t *testing.T) {
		probe(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "42", -time.Hour, testSecret))
		})
		assert.False(t, gotOK)
	})

	t.Run("wrong secret", func(t *testing.T) {
		probe(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "42", time.Hour, "another-secret-another-secret-xx"))
		})
		assert.False(t, gotOK)
	})

	t.Run("non-numeric subject", func(t *testing.T) {
		probe(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+signToken(t, "leo", time.Hour, testSecret))
		})
		assert.False(t, gotOK)
	})

	t.Run("malformed header", func(t *testing.T) {
		probe(t, func(r *http.Request) {
			r.Header.Set("Authorization", "Token abc")
		})
		assert.False(t, gotOK)
	})
}

func TestLoginRequired_RedirectsAnonymousWithNext(t *testing.T) {
	initTestConfig()
	app := echoApp(LoginRequired())

	req := httptest.NewRequest(http.MethodGet, "/probe?page=2", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next=%2Fprobe%3Fpage%3D2", resp.Header.Get("Location"))
}

func TestLoginRequired_PassesAuthenticated(t *testing.T) {
	initTestConfig()
	app := echoApp(LoginRequired())

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "42", time.Hour, testSecret))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired_RespondsJSON401(t *testing.T) {
	initTestConfig()
	app := echoApp(AuthRequired())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/probe", nil), -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"), "API routes never redirect")
}

func TestOptionalAuth_LetsAnonymousThrough(t *testing.T) {
	initTestConfig()
	app := echoApp(OptionalAuth())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/probe", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "9", time.Hour, testSecret))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
