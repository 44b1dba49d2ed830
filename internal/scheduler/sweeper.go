// Package scheduler persists riddle status transitions implied by the
// availability window.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"gorm.io/gorm"
)

// SweepResult counts the riddles moved by one sweep.
type SweepResult struct {
	Activated int64
	Completed int64
}

type Sweeper struct {
	db       *gorm.DB
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(db *gorm.DB, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		db:       db,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start sweeps immediately and then every interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			if res, err := s.Sweep(ctx); err != nil {
				slog.Error("riddle status sweep failed", "action", "scheduler.sweep", "error", err)
			} else if res.Activated > 0 || res.Completed > 0 {
				slog.Info("riddle status sweep", "activated", res.Activated, "completed", res.Completed)
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep completes published riddles whose window has closed and activates
// approved or scheduled riddles whose window is open.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()
	db := s.db.WithContext(ctx)

	completed := db.Model(&models.Riddle{}).
		Where("status IN ? AND available_until < ?",
			[]models.RiddleStatus{models.RiddleApproved, models.RiddleScheduled, models.RiddleActive}, now).
		Update("status", models.RiddleCompleted)
	if completed.Error != nil {
		return res, fmt.Errorf("complete riddles: %w", completed.Error)
	}
	res.Completed = completed.RowsAffected

	activated := db.Model(&models.Riddle{}).
		Where("status IN ? AND available_from <= ? AND available_until >= ?",
			[]models.RiddleStatus{models.RiddleApproved, models.RiddleScheduled}, now, now).
		Update("status", models.RiddleActive)
	if activated.Error != nil {
		return res, fmt.Errorf("activate riddles: %w", activated.Error)
	}
	res.Activated = activated.RowsAffected
	return res, nil
}
