package middleware

import (
	"crypto/subtle"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/config"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/identity"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected verifies the bearer token issued by the auth provider and
// caches the subject for handlers.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg))
}

// JWTOrAdminToken behaves like JWTProtected but lets requests carrying a
// valid X-Admin-Token through without a bearer token.
func JWTOrAdminToken(cfg *config.Config) fiber.Handler {
	conf := jwtConfig(cfg)
	conf.Filter = func(c *fiber.Ctx) bool {
		return HasAdminToken(c, cfg)
	}
	return jwtware.New(conf)
}

// HasAdminToken compares X-Admin-Token in constant time. An unset
// ADMIN_TOKEN never matches.
func HasAdminToken(c *fiber.Ctx, cfg *config.Config) bool {
	if cfg.AdminToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Get("X-Admin-Token")), []byte(cfg.AdminToken)) == 1
}

func jwtConfig(cfg *config.Config) jwtware.Config {
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ContextKey: identity.TokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			id, err := identity.FromToken(c)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized: token has no subject"))
			}
			c.Locals(identity.UserIDKey, id)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized: invalid or expired token"))
		},
	}
}
