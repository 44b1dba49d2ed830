package handlers

import (
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

func (h *LeaderboardHandler) Individual(c *fiber.Ctx) error {
	limit, offset := page(c)
	entries, err := h.leaderboard.GetIndividualLeaderboard(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, "leaderboard.individual", err)
	}
	return respond(c, fiber.StatusOK, "Leaderboard loaded", entries)
}

func (h *LeaderboardHandler) Teams(c *fiber.Ctx) error {
	limit, offset := page(c)
	entries, err := h.leaderboard.GetTeamLeaderboard(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, "leaderboard.teams", err)
	}
	return respond(c, fiber.StatusOK, "Team leaderboard loaded", entries)
}

func (h *LeaderboardHandler) GlobalStats(c *fiber.Ctx) error {
	stats, err := h.leaderboard.GetGlobalStats(c.UserContext())
	if err != nil {
		return respondError(c, "stats.global", err)
	}
	return respond(c, fiber.StatusOK, "Stats loaded", stats)
}

func (h *LeaderboardHandler) MyStats(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	stats, err := h.leaderboard.GetUserStats(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "stats.me", err)
	}
	return respond(c, fiber.StatusOK, "Stats loaded", stats)
}

func (h *LeaderboardHandler) Dashboard(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	dashboard, err := h.leaderboard.GetDashboard(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "dashboard", err)
	}
	return respond(c, fiber.StatusOK, "Dashboard loaded", dashboard)
}
