// Package identity resolves the authenticated caller from a Fiber request.
package identity

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenKey is where the JWT middleware stores the parsed token.
	TokenKey = "user"
	// UserIDKey caches the resolved subject for later handlers.
	UserIDKey = "user_id"
	// AdminKey marks requests authorized by the admin token header.
	AdminKey = "admin"
)

var ErrNoIdentity = errors.New("missing or invalid identity")

// UserID returns the caller's external user id, the JWT "sub" claim.
func UserID(c *fiber.Ctx) (string, error) {
	if id, ok := c.Locals(UserIDKey).(string); ok && id != "" {
		return id, nil
	}
	return FromToken(c)
}

// FromToken reads the subject straight from the parsed token.
func FromToken(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok || token == nil {
		return "", ErrNoIdentity
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", ErrNoIdentity
	}
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return "", ErrNoIdentity
	}
	return sub, nil
}

// IsAdminToken reports whether the request was let in by the admin token.
func IsAdminToken(c *fiber.Ctx) bool {
	v, _ := c.Locals(AdminKey).(bool)
	return v
}
