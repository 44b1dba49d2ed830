package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetMe returns the caller's profile, creating it on first visit.
func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	req := dto.EnsureProfileRequest{DisplayName: c.Query("display_name")}
	profile, err := h.profiles.EnsureProfile(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, "profile.ensure", err)
	}
	return respond(c, fiber.StatusOK, "Profile loaded", profile)
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	profile, err := h.profiles.UpdateProfile(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, "profile.update", err)
	}
	return respond(c, fiber.StatusOK, "Profile updated", profile)
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	target := strings.TrimSpace(c.Params("userId"))
	if target == "" {
		return badRequest(c, "Invalid userId")
	}
	profile, err := h.profiles.GetProfileByUserID(c.UserContext(), target)
	if err != nil {
		return respondError(c, "profile.get", err)
	}
	return respond(c, fiber.StatusOK, "Profile loaded", profile)
}
