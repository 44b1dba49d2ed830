package handlers

import (
	"crypto/subtle"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WebhookHandler struct {
	memberships *services.MembershipService
	auth        string
}

func NewWebhookHandler(memberships *services.MembershipService, auth string) *WebhookHandler {
	return &WebhookHandler{memberships: memberships, auth: auth}
}

// Billing applies a billing provider event after checking the shared secret
// in the Authorization header.
func (h *WebhookHandler) Billing(c *fiber.Ctx) error {
	if h.auth == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.Failure("Webhooks are not configured"))
	}
	if subtle.ConstantTimeCompare([]byte(c.Get(fiber.HeaderAuthorization)), []byte(h.auth)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Unauthorized"))
	}

	var webhook dto.BillingWebhook
	if err := c.BodyParser(&webhook); err != nil {
		return badRequest(c, "Invalid webhook payload")
	}
	if err := h.memberships.HandleWebhookEvent(c.UserContext(), &webhook.Event); err != nil {
		return respondError(c, "webhook.billing", err)
	}

	slog.Info("webhook processed", "event_type", webhook.Event.Type, "user_id", webhook.Event.AppUserID)
	return respond(c, fiber.StatusOK, "Webhook received", fiber.Map{"received": true})
}
