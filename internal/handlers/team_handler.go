package handlers

import (
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TeamHandler struct {
	teams *services.TeamService
}

func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

func (h *TeamHandler) ListPublic(c *fiber.Ctx) error {
	limit, offset := page(c)
	teams, total, err := h.teams.ListPublicTeams(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, "team.list", err)
	}
	return respond(c, fiber.StatusOK, "Teams loaded", dto.Page{Items: teams, Total: total, Limit: limit, Offset: offset})
}

func (h *TeamHandler) Create(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	team, err := h.teams.CreateTeam(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, "team.create", err)
	}
	return respond(c, fiber.StatusCreated, "Team created", team)
}

func (h *TeamHandler) Mine(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teams, err := h.teams.GetUserTeams(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "team.mine", err)
	}
	return respond(c, fiber.StatusOK, "Teams loaded", teams)
}

// Get accepts either a team id or a slug.
func (h *TeamHandler) Get(c *fiber.Ctx) error {
	var (
		team *models.Team
		err  error
	)
	if id, parseErr := uuid.Parse(c.Params("id")); parseErr == nil {
		team, err = h.teams.GetTeam(c.UserContext(), id)
	} else {
		team, err = h.teams.GetTeamBySlug(c.UserContext(), c.Params("id"))
	}
	if err != nil {
		return respondError(c, "team.get", err)
	}
	return respond(c, fiber.StatusOK, "Team loaded", team)
}

func (h *TeamHandler) Update(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	team, err := h.teams.UpdateTeam(c.UserContext(), userID, teamID, &req)
	if err != nil {
		return respondError(c, "team.update", err)
	}
	return respond(c, fiber.StatusOK, "Team updated", team)
}

func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.teams.DeleteTeam(c.UserContext(), userID, teamID); err != nil {
		return respondError(c, "team.delete", err)
	}
	return respond(c, fiber.StatusOK, "Team deleted", nil)
}

func (h *TeamHandler) Members(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	members, err := h.teams.GetTeamMembers(c.UserContext(), userID, teamID)
	if err != nil {
		return respondError(c, "team.members", err)
	}
	return respond(c, fiber.StatusOK, "Members loaded", members)
}

func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.teams.RemoveMember(c.UserContext(), userID, teamID, c.Params("userId")); err != nil {
		return respondError(c, "team.remove_member", err)
	}
	return respond(c, fiber.StatusOK, "Member removed", nil)
}

func (h *TeamHandler) ListJoinRequests(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	requests, err := h.teams.ListJoinRequests(c.UserContext(), userID, teamID)
	if err != nil {
		return respondError(c, "team.join_requests", err)
	}
	return respond(c, fiber.StatusOK, "Join requests loaded", requests)
}

func (h *TeamHandler) RequestToJoin(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	teamID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.JoinTeamRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	request, err := h.teams.RequestToJoin(c.UserContext(), userID, teamID, &req)
	if err != nil {
		return respondError(c, "team.request_join", err)
	}
	return respond(c, fiber.StatusCreated, "Join request sent", request)
}

func (h *TeamHandler) ApproveJoinRequest(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	requestID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	membership, err := h.teams.ApproveJoinRequest(c.UserContext(), userID, requestID)
	if err != nil {
		return respondError(c, "team.approve_join", err)
	}
	return respond(c, fiber.StatusOK, "Join request approved", membership)
}

func (h *TeamHandler) RejectJoinRequest(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	requestID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.teams.RejectJoinRequest(c.UserContext(), userID, requestID); err != nil {
		return respondError(c, "team.reject_join", err)
	}
	return respond(c, fiber.StatusOK, "Join request rejected", nil)
}

func (h *TeamHandler) CancelJoinRequest(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	requestID, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.teams.CancelJoinRequest(c.UserContext(), userID, requestID); err != nil {
		return respondError(c, "team.cancel_join", err)
	}
	return respond(c, fiber.StatusOK, "Join request cancelled", nil)
}
