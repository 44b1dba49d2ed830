package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/config"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups every route handler Setup mounts.
type Handlers struct {
	Health        *handlers.HealthHandler
	Profile       *handlers.ProfileHandler
	Leaderboard   *handlers.LeaderboardHandler
	Team          *handlers.TeamHandler
	Riddle        *handlers.RiddleHandler
	RiddleRequest *handlers.RiddleRequestHandler
	Response      *handlers.ResponseHandler
	Notification  *handlers.NotificationHandler
	Webhook       *handlers.WebhookHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(rateLimit(60))

	// Public
	api.Get("/health", h.Health.Check)
	api.Get("/leaderboard/individual", h.Leaderboard.Individual)
	api.Get("/leaderboard/teams", h.Leaderboard.Teams)
	api.Get("/stats/global", h.Leaderboard.GlobalStats)
	api.Post("/webhooks/billing", h.Webhook.Billing)

	// Admin: admin token header, or a JWT listed in ADMIN_USER_IDS
	admin := api.Group("/admin", middleware.JWTOrAdminToken(cfg), middleware.AdminRequired(cfg))
	admin.Post("/announcements", h.Notification.Announce)

	// Everything below requires a bearer token
	auth := middleware.JWTProtected(cfg)

	api.Get("/profile/me", auth, h.Profile.GetMe)
	api.Put("/profile/me", auth, h.Profile.UpdateMe)
	api.Get("/profiles/:userId", auth, h.Profile.GetProfile)
	api.Get("/stats/me", auth, h.Leaderboard.MyStats)
	api.Get("/dashboard", auth, h.Leaderboard.Dashboard)

	// Teams
	api.Get("/teams", auth, h.Team.ListPublic)
	api.Post("/teams", auth, rateLimit(10), h.Team.Create)
	api.Get("/teams/mine", auth, h.Team.Mine)
	api.Get("/teams/:id", auth, h.Team.Get)
	api.Put("/teams/:id", auth, h.Team.Update)
	api.Delete("/teams/:id", auth, h.Team.Delete)
	api.Get("/teams/:id/members", auth, h.Team.Members)
	api.Delete("/teams/:id/members/:userId", auth, h.Team.RemoveMember)
	api.Get("/teams/:id/join-requests", auth, h.Team.ListJoinRequests)
	api.Post("/teams/:id/join-requests", auth, h.Team.RequestToJoin)
	api.Post("/join-requests/:id/approve", auth, h.Team.ApproveJoinRequest)
	api.Post("/join-requests/:id/reject", auth, h.Team.RejectJoinRequest)
	api.Delete("/join-requests/:id", auth, h.Team.CancelJoinRequest)

	// Riddle requests
	api.Get("/teams/:id/riddle-requests", auth, h.RiddleRequest.ListTeam)
	api.Post("/teams/:id/riddle-requests", auth, h.RiddleRequest.Create)
	api.Get("/riddle-requests/mine", auth, h.RiddleRequest.Mine)
	api.Post("/riddle-requests/:id/approve", auth, h.RiddleRequest.Approve)
	api.Post("/riddle-requests/:id/reject", auth, h.RiddleRequest.Reject)

	// Riddles (static paths before :id)
	api.Get("/riddles", auth, h.Riddle.List)
	api.Post("/riddles", auth, h.Riddle.Create)
	api.Post("/riddles/suggest", auth, rateLimit(10), h.Riddle.Suggest)
	api.Get("/riddles/active", auth, h.Riddle.Active)
	api.Get("/riddles/moderation", auth, h.Riddle.ModerationQueue)
	api.Get("/riddles/:id", auth, h.Riddle.Get)
	api.Put("/riddles/:id", auth, h.Riddle.Update)
	api.Delete("/riddles/:id", auth, h.Riddle.Delete)
	api.Post("/riddles/:id/approve", auth, h.Riddle.Approve)
	api.Post("/riddles/:id/reject", auth, h.Riddle.Reject)
	api.Post("/riddles/:id/schedule", auth, h.Riddle.Schedule)

	// Responses
	api.Post("/riddles/:id/responses", auth, rateLimit(20), h.Response.Submit)
	api.Get("/riddles/:id/responses/me", auth, h.Response.GetMine)
	api.Get("/responses/mine", auth, h.Response.ListMine)
	api.Put("/responses/:id", auth, h.Response.Update)

	// Notifications (static paths before :id)
	api.Get("/notifications", auth, h.Notification.List)
	api.Delete("/notifications", auth, h.Notification.DeleteRead)
	api.Get("/notifications/unread-count", auth, h.Notification.UnreadCount)
	api.Post("/notifications/read-all", auth, h.Notification.MarkAllRead)
	api.Get("/notifications/preferences", auth, h.Notification.GetPreferences)
	api.Put("/notifications/preferences", auth, h.Notification.UpdatePreference)
	api.Post("/notifications/:id/read", auth, h.Notification.MarkRead)
	api.Delete("/notifications/:id", auth, h.Notification.Delete)

	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.Failure("Route not found"))
	})
}

// rateLimit allows max requests per minute per IP.
func rateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.Failure("Too many requests"))
		},
	})
}
