package handlers

import (
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RiddleRequestHandler struct {
	requests *services.RiddleRequestService
}

func NewRiddleRequestHandler(requests *services.RiddleRequestService) *RiddleRequestHandler {
	return &RiddleRequestHandler{requests: requests}
}

func (h *RiddleRequestHandler) Create(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.CreateRiddleRequestInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	request, err := h.requests.CreateRiddleRequest(c.UserContext(), userID, teamID, &req)
	if err != nil {
		return respondError(c, "riddle_request.create", err)
	}
	return respond(c, fiber.StatusCreated, "Riddle request sent", request)
}

func (h *RiddleRequestHandler) ListTeam(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	status := models.RiddleRequestStatus(c.Query("status"))
	requests, err := h.requests.ListTeamRiddleRequests(c.UserContext(), userID, teamID, status)
	if err != nil {
		return respondError(c, "riddle_request.list_team", err)
	}
	return respond(c, fiber.StatusOK, "Riddle requests loaded", requests)
}

func (h *RiddleRequestHandler) Mine(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	requests, err := h.requests.ListMyRiddleRequests(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "riddle_request.mine", err)
	}
	return respond(c, fiber.StatusOK, "Riddle requests loaded", requests)
}

func (h *RiddleRequestHandler) Approve(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	requestID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	riddle, err := h.requests.ApproveRiddleRequest(c.UserContext(), userID, requestID)
	if err != nil {
		return respondError(c, "riddle_request.approve", err)
	}
	return respond(c, fiber.StatusOK, "Riddle request approved", riddle)
}

func (h *RiddleRequestHandler) Reject(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	requestID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	request, err := h.requests.RejectRiddleRequest(c.UserContext(), userID, requestID)
	if err != nil {
		return respondError(c, "riddle_request.reject", err)
	}
	return respond(c, fiber.StatusOK, "Riddle request rejected", request)
}
