package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpdateResponseAfterWindowCloses(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)

	from := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	until := from.Add(time.Hour)
	riddle, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Closing Time", Question: "What gets wetter the more it dries?", CorrectAnswer: "towel",
		AvailableFrom: &from, AvailableUntil: &until,
	})
	require.NoError(t, err)

	h.responses.now = func() time.Time { return from.Add(10 * time.Minute) }
	response, err := h.responses.SubmitResponse(ctx, "player", riddle.ID, "sponge")
	require.NoError(t, err)
	assert.False(t, response.IsCorrect)

	h.responses.now = func() time.Time { return until.Add(time.Second) }
	_, err = h.responses.UpdateResponse(ctx, "player", response.ID, "towel")
	assert.ErrorIs(t, err, ErrRiddleUnavailable)

	stored, err := h.responses.GetUserResponse(ctx, "player", riddle.ID)
	require.NoError(t, err)
	assert.Equal(t, "sponge", stored.Answer)
	assert.False(t, stored.IsCorrect)
}

func TestConcurrentSubmissionsRecordOneResponse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)

	riddle, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Race", Question: "What can run but never walks?", CorrectAnswer: "water",
	})
	require.NoError(t, err)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.responses.SubmitResponse(ctx, "racer", riddle.ID, "water")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyResponded)
	}
	assert.Equal(t, 1, succeeded)

	var count int64
	require.NoError(t, h.db.Model(&models.RiddleResponse{}).Where("riddle_id = ? AND user_id = ?", riddle.ID, "racer").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stats, err := h.leaderboard.GetUserStats(ctx, "racer")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalPoints)
}

func TestFirstSolveSentOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)

	riddle, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Flip Flop", Question: "What has a neck but no head?", CorrectAnswer: "bottle",
	})
	require.NoError(t, err)

	response, err := h.responses.SubmitResponse(ctx, "player", riddle.ID, "bottle")
	require.NoError(t, err)
	require.True(t, response.IsCorrect)

	_, err = h.responses.UpdateResponse(ctx, "player", response.ID, "shirt")
	require.NoError(t, err)
	again, err := h.responses.UpdateResponse(ctx, "player", response.ID, "Bottle")
	require.NoError(t, err)
	assert.True(t, again.IsCorrect)

	assert.Equal(t, []string{"first_solve"}, h.notificationEvents(t, "player"))
}

// failMembershipReads makes every query against team_memberships fail.
func failMembershipReads(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Callback().Query().Before("gorm:query").Register("test:fail_membership_reads", func(tx *gorm.DB) {
		if tx.Statement.Table == "team_memberships" {
			_ = tx.AddError(errors.New("membership store down"))
		}
	})
	require.NoError(t, err)
}

func TestMembershipLookupFailureIsNotForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	team, err := h.teams.CreateTeam(ctx, "owner", &dto.CreateTeamRequest{Name: "Lanterns"})
	require.NoError(t, err)
	riddle, err := h.riddles.CreateRiddle(ctx, "owner", &dto.RiddleInput{
		Title: "Team Only", Question: "What has hands but cannot clap?", CorrectAnswer: "clock",
		TeamID: &team.ID,
	})
	require.NoError(t, err)

	failMembershipReads(t, h.db)

	_, err = h.responses.SubmitResponse(ctx, "owner", riddle.ID, "clock")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotTeamMember)
	assert.False(t, isKnown(err))
	assert.ErrorContains(t, err, "membership store down")

	_, err = h.riddles.GetRiddle(ctx, "owner", riddle.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotTeamMember)

	_, err = h.teams.RequestToJoin(ctx, "owner", team.ID, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyMember)
	assert.False(t, isKnown(err))

	_, err = h.requests.CreateRiddleRequest(ctx, "owner", team.ID, &dto.CreateRiddleRequestInput{
		Title: "Sneaky", Question: "What is always in front of you?", CorrectAnswer: "future",
	})
	require.Error(t, err)
	assert.False(t, isKnown(err))

	member, err := h.teams.IsTeamMember(ctx, "owner", team.ID)
	assert.Error(t, err)
	assert.False(t, member)
}
