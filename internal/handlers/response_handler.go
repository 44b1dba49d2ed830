package handlers

import (
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ResponseHandler struct {
	responses *services.ResponseService
}

func NewResponseHandler(responses *services.ResponseService) *ResponseHandler {
	return &ResponseHandler{responses: responses}
}

func (h *ResponseHandler) Submit(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	response, err := h.responses.SubmitResponse(c.UserContext(), userID, riddleID, req.Answer)
	if err != nil {
		return respondError(c, "response.submit", err)
	}
	message := "Not quite. Better luck next time!"
	if response.IsCorrect {
		message = "Correct!"
	}
	return respond(c, fiber.StatusCreated, message, response)
}

func (h *ResponseHandler) GetMine(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	riddleID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	response, err := h.responses.GetUserResponse(c.UserContext(), userID, riddleID)
	if err != nil {
		return respondError(c, "response.get", err)
	}
	return respond(c, fiber.StatusOK, "Response loaded", response)
}

func (h *ResponseHandler) ListMine(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	limit, offset := page(c)
	responses, total, err := h.responses.ListUserResponses(c.UserContext(), userID, limit, offset)
	if err != nil {
		return respondError(c, "response.list", err)
	}
	return respond(c, fiber.StatusOK, "Responses loaded", dto.Page{Items: responses, Total: total, Limit: limit, Offset: offset})
}

func (h *ResponseHandler) Update(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	responseID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	response, err := h.responses.UpdateResponse(c.UserContext(), userID, responseID, req.Answer)
	if err != nil {
		return respondError(c, "response.update", err)
	}
	return respond(c, fiber.StatusOK, "Response updated", response)
}
