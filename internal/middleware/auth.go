package middleware

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// SessionCookie is the cookie carrying the JWT for browser sessions.
const SessionCookie = "session"

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Principal extracts the authenticated user ID from the request, checking
// the Authorization header first and the session cookie second. The second
// return value reports whether a valid principal is present; anonymous
// requests are not an error.
func Principal(c *fiber.Ctx) (uint, bool) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		tokenString = c.Cookies(SessionCookie)
	}
	if tokenString == "" {
		return 0, false
	}
	return parsePrincipal(tokenString)
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func parsePrincipal(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	// User ID lives in the "sub" claim (RFC 7519)
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// OptionalAuth populates c.Locals("userID") when a valid principal is
// present and lets the request through either way. Handlers serving public
// pages use it to branch on presence rather than ambient state.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := Principal(c); ok {
			setPrincipal(c, userID)
		}
		return c.Next()
	}
}

// LoginRequired enforces authentication for the web surface. Anonymous
// requests are redirected to the login page with a `next` parameter
// pointing back at the original target, and no state is changed.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := Principal(c)
		if !ok {
			next := url.QueryEscape(c.OriginalURL())
			return c.Redirect("/auth/login/?next="+next, fiber.StatusFound)
		}
		setPrincipal(c, userID)
		return c.Next()
	}
}

// AuthRequired enforces authentication for API routes, responding 401
// instead of redirecting.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := Principal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing token",
			})
		}
		setPrincipal(c, userID)
		return c.Next()
	}
}

// setPrincipal records the user in Fiber locals and syncs it into the
// request context so the context-aware logger sees it in deep layers.
func setPrincipal(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}
