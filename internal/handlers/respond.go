package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/identity"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrUnavailable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Unexpected errors are logged and
// answered with a generic message.
func respondError(c *fiber.Ctx, action string, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		userID, _ := identity.UserID(c)
		slog.Error("request failed",
			"action", action,
			"user_id", userID,
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
		message = "Something went wrong. Please try again."
	}
	return c.Status(status).JSON(dto.Failure(message))
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(dto.Success(message, data))
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Failure(message))
}

// currentUser resolves the caller or writes a 401.
func currentUser(c *fiber.Ctx) (string, bool, error) {
	userID, err := identity.UserID(c)
	if err != nil {
		return "", false, c.Status(fiber.StatusUnauthorized).JSON(dto.Failure("Authentication required"))
	}
	return userID, true, nil
}

// paramUUID parses a path parameter or writes a 400.
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, badRequest(c, "Invalid "+name)
	}
	return id, true, nil
}

func page(c *fiber.Ctx) (int, int) {
	return c.QueryInt("limit", 0), c.QueryInt("offset", 0)
}
