package middleware

import (
	"slices"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/config"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired admits requests carrying the admin token header or a JWT
// whose subject is listed in ADMIN_USER_IDS.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminUserIDs := config.ParseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if HasAdminToken(c, cfg) {
			c.Locals(identity.AdminKey, true)
			return c.Next()
		}

		userID, err := identity.UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized"))
		}
		if slices.Contains(adminUserIDs, userID) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.Failure("Admin access required"))
	}
}
