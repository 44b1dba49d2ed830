package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
)

// EffectiveStatus derives the lifecycle status from the availability window.
// The window is authoritative for published riddles (approved, scheduled,
// active); every other status is returned as stored.
func EffectiveStatus(r *models.Riddle, now time.Time) models.RiddleStatus {
	if !published(r.Status) {
		return r.Status
	}
	if now.After(r.AvailableUntil) {
		return models.RiddleCompleted
	}
	if now.Before(r.AvailableFrom) {
		if r.Status == models.RiddleApproved {
			return models.RiddleApproved
		}
		return models.RiddleScheduled
	}
	return models.RiddleActive
}

func published(status models.RiddleStatus) bool {
	switch status {
	case models.RiddleApproved, models.RiddleScheduled, models.RiddleActive:
		return true
	}
	return false
}

// IsAnswerable reports whether responses may be submitted at now. Both window
// bounds are inclusive.
func IsAnswerable(r *models.Riddle, now time.Time) bool {
	if EffectiveStatus(r, now) != models.RiddleActive {
		return false
	}
	return !now.Before(r.AvailableFrom) && !now.After(r.AvailableUntil)
}

func validateWindow(from, until time.Time, timezone string) error {
	if from.IsZero() || until.IsZero() {
		return invalidf("availability window requires both bounds")
	}
	if !from.Before(until) {
		return invalidf("available_from must be before available_until")
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return invalidf("unknown timezone %q", timezone)
		}
	}
	return nil
}
