package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger. Development builds log at debug level.
func Setup(appEnv string) *slog.JSONHandler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}

// Attach replaces the default logger with one that writes to every handler.
func Attach(handlers ...slog.Handler) {
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}
