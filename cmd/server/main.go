package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/cache"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/config"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/database"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/logging"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/routes"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/scheduler"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.Attach(stdout, pgLogHandler)
	logging.StartCleanup(ctx, database.DB, cfg.LogRetention)

	// Redis read cache (optional)
	readCache, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		slog.Warn("redis unavailable, continuing without cache", "error", err)
		readCache = nil
	}

	// Services
	filter := services.NewContentFilter()
	notifications := services.NewNotificationService(database.DB)
	leaderboard := services.NewLeaderboardService(database.DB, readCache)
	profiles := services.NewProfileService(database.DB, cfg.ImageHosts)
	teams := services.NewTeamService(database.DB, notifications, leaderboard, filter, cfg.DefaultTeamMaxMembers, cfg.ImageHosts)
	riddles := services.NewRiddleService(database.DB, notifications, leaderboard, filter, cfg.DefaultRiddleWindow, cfg.ImageHosts)
	riddleRequests := services.NewRiddleRequestService(database.DB, notifications, filter, cfg.DefaultRiddleWindow)
	responses := services.NewResponseService(database.DB, notifications, leaderboard)
	memberships := services.NewMembershipService(database.DB, notifications)

	// Riddle status sweeper
	scheduler.NewSweeper(database.DB, cfg.StatusSweepInterval).Start(ctx)

	// Handlers
	var cachePing handlers.Pinger
	if readCache != nil {
		cachePing = readCache.Ping
	}
	h := routes.Handlers{
		Health:        handlers.NewHealthHandler(database.Ping, cachePing),
		Profile:       handlers.NewProfileHandler(profiles),
		Leaderboard:   handlers.NewLeaderboardHandler(leaderboard),
		Team:          handlers.NewTeamHandler(teams),
		Riddle:        handlers.NewRiddleHandler(riddles),
		RiddleRequest: handlers.NewRiddleRequestHandler(riddleRequests),
		Response:      handlers.NewResponseHandler(responses),
		Notification:  handlers.NewNotificationHandler(notifications),
		Webhook:       handlers.NewWebhookHandler(memberships, cfg.WebhookAuth),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := readCache.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// customErrorHandler answers errors that escape handlers (routing, body
// limits, panics) with the standard envelope.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		sentry.CaptureException(err)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.Failure(message))
}
