package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/config"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-bytes-for-hs256"

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func whoAmI(c *fiber.Ctx) error {
	id, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure(err.Error()))
	}
	return c.JSON(dto.Success("ok", fiber.Map{"user_id": id, "admin": identity.IsAdminToken(c)}))
}

func do(t *testing.T, app *fiber.App, headers map[string]string) (int, dto.ActionResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var result dto.ActionResult
	require.NoError(t, json.Unmarshal(body, &result))
	return resp.StatusCode, result
}

func TestJWTProtected(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := fiber.New()
	app.Get("/", JWTProtected(cfg), whoAmI)

	status, result := do(t, app, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, result.IsSuccess)

	status, _ = do(t, app, map[string]string{"Authorization": "Bearer " + signToken(t, "other-secret", "user_1")})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, "")})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, result = do(t, app, map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, "user_1")})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, result.IsSuccess)
	assert.Equal(t, "user_1", result.Data.(map[string]interface{})["user_id"])
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, AdminToken: "admin-token", AdminUserIDs: "root, ops"}
	app := fiber.New()
	app.Get("/", JWTOrAdminToken(cfg), AdminRequired(cfg), func(c *fiber.Ctx) error {
		return c.JSON(dto.Success("ok", fiber.Map{"admin": identity.IsAdminToken(c)}))
	})

	status, result := do(t, app, map[string]string{"X-Admin-Token": "admin-token"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result.Data.(map[string]interface{})["admin"])

	status, _ = do(t, app, map[string]string{"X-Admin-Token": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, result = do(t, app, map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, "ops")})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result.Data.(map[string]interface{})["admin"])

	status, _ = do(t, app, map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, "player")})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestHasAdminTokenRequiresConfiguredToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(dto.Success("ok", fiber.Map{
			"unset":    HasAdminToken(c, &config.Config{}),
			"match":    HasAdminToken(c, &config.Config{AdminToken: "t0ken"}),
			"mismatch": HasAdminToken(c, &config.Config{AdminToken: "t0ken-longer"}),
		}))
	})
	_, result := do(t, app, map[string]string{"X-Admin-Token": "t0ken"})
	data := result.Data.(map[string]interface{})
	assert.Equal(t, false, data["unset"])
	assert.Equal(t, true, data["match"])
	assert.Equal(t, false, data["mismatch"])
}
