package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanEditRiddle(t *testing.T) {
	riddle := &models.Riddle{CreatedBy: "creator"}
	creator := &models.Profile{UserID: "creator", Membership: models.MembershipFree}
	pro := &models.Profile{UserID: "moderator", Membership: models.MembershipPro}
	other := &models.Profile{UserID: "someone", Membership: models.MembershipFree}

	assert.True(t, CanEditRiddle(creator, riddle))
	assert.True(t, CanEditRiddle(pro, riddle))
	assert.False(t, CanEditRiddle(other, riddle))
	assert.False(t, CanEditRiddle(nil, riddle))
	assert.False(t, CanEditRiddle(pro, nil))
}

func TestCanModerate(t *testing.T) {
	assert.True(t, CanModerate(&models.Profile{Membership: models.MembershipPro}))
	assert.False(t, CanModerate(&models.Profile{Membership: models.MembershipFree}))
	assert.False(t, CanModerate(nil))
}
