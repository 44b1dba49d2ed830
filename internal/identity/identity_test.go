package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(c *fiber.Ctx)
		want   string
		wantOK bool
	}{
		{"nothing set", func(c *fiber.Ctx) {}, "", false},
		{"cached id wins", func(c *fiber.Ctx) {
			c.Locals(UserIDKey, "cached")
			c.Locals(TokenKey, jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "token"}))
		}, "cached", true},
		{"subject from token", func(c *fiber.Ctx) {
			c.Locals(TokenKey, jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": " user_7 "}))
		}, "user_7", true},
		{"blank subject", func(c *fiber.Ctx) {
			c.Locals(TokenKey, jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "  "}))
		}, "", false},
		{"wrong local type", func(c *fiber.Ctx) { c.Locals(TokenKey, "not a token") }, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var gotErr error
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				tt.setup(c)
				got, gotErr = UserID(c)
				return nil
			})
			_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			if tt.wantOK {
				assert.NoError(t, gotErr)
				assert.Equal(t, tt.want, got)
			} else {
				assert.ErrorIs(t, gotErr, ErrNoIdentity)
			}
		})
	}
}
