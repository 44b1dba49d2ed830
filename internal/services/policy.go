package services

import "github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"

// CanModerate gates approve, reject, schedule and the moderation queue.
func CanModerate(actor *models.Profile) bool {
	return actor.IsPro()
}

// CanEditRiddle is the single rule for riddle update and delete rights: the
// creator, or any pro member.
func CanEditRiddle(actor *models.Profile, riddle *models.Riddle) bool {
	if actor == nil || riddle == nil {
		return false
	}
	return actor.UserID == riddle.CreatedBy || actor.IsPro()
}
