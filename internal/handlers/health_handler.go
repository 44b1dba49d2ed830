package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger checks a backing service.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler takes the database check and an optional cache check.
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
		Cache:     "disabled",
	}
	if err := h.db(ctx); err != nil {
		resp.Status = "degraded"
		resp.DB = "unhealthy: " + err.Error()
	}
	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache(ctx); err != nil {
			resp.Status = "degraded"
			resp.Cache = "unhealthy: " + err.Error()
		}
	}

	status := fiber.StatusOK
	if resp.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}
