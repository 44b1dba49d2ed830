package handlers

import (
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RiddleHandler struct {
	riddles *services.RiddleService
}

func NewRiddleHandler(riddles *services.RiddleService) *RiddleHandler {
	return &RiddleHandler{riddles: riddles}
}

func (h *RiddleHandler) List(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	limit, offset := page(c)
	filter := dto.RiddleFilter{
		Status:     models.RiddleStatus(c.Query("status")),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.Query("team_id"); raw != "" {
		teamID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid team_id")
		}
		filter.TeamID = &teamID
	}
	riddles, total, err := h.riddles.ListRiddles(c.UserContext(), userID, filter)
	if err != nil {
		return respondError(c, "riddle.list", err)
	}
	return respond(c, fiber.StatusOK, "Riddles loaded", dto.Page{Items: riddles, Total: total, Limit: limit, Offset: offset})
}

func (h *RiddleHandler) Create(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.RiddleInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	riddle, err := h.riddles.CreateRiddle(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, "riddle.create", err)
	}
	return respond(c, fiber.StatusCreated, "Riddle created", riddle)
}

func (h *RiddleHandler) Suggest(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.RiddleInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	riddle, err := h.riddles.SuggestRiddle(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, "riddle.suggest", err)
	}
	return respond(c, fiber.StatusCreated, "Riddle submitted for review", riddle)
}

func (h *RiddleHandler) Active(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddles, err := h.riddles.ListActiveRiddles(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "riddle.active", err)
	}
	return respond(c, fiber.StatusOK, "Active riddles loaded", riddles)
}

func (h *RiddleHandler) ModerationQueue(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	limit, offset := page(c)
	riddles, total, err := h.riddles.ListModerationQueue(c.UserContext(), userID, limit, offset)
	if err != nil {
		return respondError(c, "riddle.moderation_queue", err)
	}
	return respond(c, fiber.StatusOK, "Moderation queue loaded", dto.Page{Items: riddles, Total: total, Limit: limit, Offset: offset})
}

// Get accepts either a riddle id or a slug.
func (h *RiddleHandler) Get(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var riddle *models.Riddle
	if id, parseErr := uuid.Parse(c.Params("id")); parseErr == nil {
		riddle, err = h.riddles.GetRiddle(c.UserContext(), userID, id)
	} else {
		riddle, err = h.riddles.GetRiddleBySlug(c.UserContext(), userID, c.Params("id"))
	}
	if err != nil {
		return respondError(c, "riddle.get", err)
	}
	return respond(c, fiber.StatusOK, "Riddle loaded", riddle)
}

func (h *RiddleHandler) Update(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateRiddleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	riddle, err := h.riddles.UpdateRiddle(c.UserContext(), userID, riddleID, &req)
	if err != nil {
		return respondError(c, "riddle.update", err)
	}
	return respond(c, fiber.StatusOK, "Riddle updated", riddle)
}

func (h *RiddleHandler) Delete(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.riddles.DeleteRiddle(c.UserContext(), userID, riddleID); err != nil {
		return respondError(c, "riddle.delete", err)
	}
	return respond(c, fiber.StatusOK, "Riddle deleted", nil)
}

func (h *RiddleHandler) Approve(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	riddle, err := h.riddles.ApproveRiddle(c.UserContext(), userID, riddleID)
	if err != nil {
		return respondError(c, "riddle.approve", err)
	}
	return respond(c, fiber.StatusOK, "Riddle approved", riddle)
}

func (h *RiddleHandler) Reject(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.RejectRiddleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	riddle, err := h.riddles.RejectRiddle(c.UserContext(), userID, riddleID, req.Reason)
	if err != nil {
		return respondError(c, "riddle.reject", err)
	}
	return respond(c, fiber.StatusOK, "Riddle rejected", riddle)
}

func (h *RiddleHandler) Schedule(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.ScheduleRiddleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	riddle, err := h.riddles.ScheduleRiddle(c.UserContext(), userID, riddleID, &req)
	if err != nil {
		return respondError(c, "riddle.schedule", err)
	}
	return respond(c, fiber.StatusOK, "Riddle scheduled", riddle)
}
