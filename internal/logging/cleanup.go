package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"gorm.io/gorm"
)

var fallbackLogger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

// StartCleanup deletes system_logs older than retention once at start and
// then daily, until ctx is cancelled.
func StartCleanup(ctx context.Context, db *gorm.DB, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			PurgeLogs(ctx, db, time.Now().Add(-retention))
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PurgeLogs removes rows logged before cutoff and returns how many went.
func PurgeLogs(ctx context.Context, db *gorm.DB, cutoff time.Time) int64 {
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "action", "logs.cleanup", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
