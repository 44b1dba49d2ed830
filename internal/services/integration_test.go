package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	db            *gorm.DB
	profiles      *ProfileService
	notifications *NotificationService
	teams         *TeamService
	riddles       *RiddleService
	requests      *RiddleRequestService
	responses     *ResponseService
	leaderboard   *LeaderboardService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := dbtest.Open(t)
	filter := NewContentFilter()
	notifications := NewNotificationService(db)
	leaderboard := NewLeaderboardService(db, nil)
	return &harness{
		db:            db,
		profiles:      NewProfileService(db, nil),
		notifications: notifications,
		teams:         NewTeamService(db, notifications, leaderboard, filter, 20, nil),
		riddles:       NewRiddleService(db, notifications, leaderboard, filter, 24*time.Hour, nil),
		requests:      NewRiddleRequestService(db, notifications, filter, 24*time.Hour),
		responses:     NewResponseService(db, notifications, leaderboard),
		leaderboard:   leaderboard,
	}
}

func (h *harness) profile(t *testing.T, userID string, membership models.Membership) {
	t.Helper()
	_, err := h.profiles.EnsureProfile(context.Background(), userID, &dto.EnsureProfileRequest{DisplayName: userID})
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&models.Profile{}).Where("user_id = ?", userID).Update("membership", membership).Error)
}

func (h *harness) notificationEvents(t *testing.T, userID string) []string {
	t.Helper()
	var events []string
	require.NoError(t, h.db.Model(&models.Notification{}).Where("user_id = ?", userID).Order("created_at ASC").Pluck("event", &events).Error)
	return events
}

func TestLeaderboardCompetitionRanking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)

	riddle, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Ranking riddle", Question: "q?", CorrectAnswer: "a",
	})
	require.NoError(t, err)

	for userID, points := range map[string]int{"alice": 100, "bob": 100, "carol": 50, "dave": 0} {
		require.NoError(t, h.db.Create(&models.RiddleResponse{
			ID: uuid.New(), RiddleID: riddle.ID, UserID: userID, Answer: "a",
			IsCorrect: points > 0, PointsEarned: points, SubmittedAt: time.Now().UTC(),
		}).Error)
	}

	entries, err := h.leaderboard.GetIndividualLeaderboard(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{entries[0].UserID, entries[1].UserID, entries[2].UserID})
	assert.Equal(t, []int64{1, 1, 3}, []int64{entries[0].Rank, entries[1].Rank, entries[2].Rank})

	stats, err := h.leaderboard.GetUserStats(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, stats.Rank)
	assert.Equal(t, int64(3), *stats.Rank)
	assert.Equal(t, int64(50), stats.TotalPoints)

	unranked, err := h.leaderboard.GetUserStats(ctx, "dave")
	require.NoError(t, err)
	assert.Nil(t, unranked.Rank)
	assert.Equal(t, 0, unranked.AccuracyRate)
}

func TestTeamJoinFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	team, err := h.teams.CreateTeam(ctx, "owner", &dto.CreateTeamRequest{Name: "Night Owls"})
	require.NoError(t, err)
	assert.Equal(t, "night-owls", team.Slug)
	assert.Equal(t, int64(1), team.MemberCount)

	_, err = h.teams.CreateTeam(ctx, "someone", &dto.CreateTeamRequest{Name: "night owls!"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	request, err := h.teams.RequestToJoin(ctx, "joiner", team.ID, &dto.JoinTeamRequest{Message: "let me in"})
	require.NoError(t, err)
	_, err = h.teams.RequestToJoin(ctx, "joiner", team.ID, nil)
	assert.ErrorIs(t, err, ErrJoinRequestPending)

	_, err = h.teams.ApproveJoinRequest(ctx, "joiner", request.ID)
	assert.ErrorIs(t, err, ErrNotTeamOwner)

	membership, err := h.teams.ApproveJoinRequest(ctx, "owner", request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleMember, membership.Role)

	_, err = h.teams.ApproveJoinRequest(ctx, "owner", request.ID)
	assert.ErrorIs(t, err, ErrRequestResolved)

	members, err := h.teams.GetTeamMembers(ctx, "joiner", team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "owner", members[0].UserID)
	assert.Equal(t, models.TeamRoleOwner, members[0].Role)

	teams, err := h.teams.GetUserTeams(ctx, "joiner")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, int64(2), teams[0].MemberCount)
	assert.Equal(t, models.TeamRoleMember, teams[0].Role)

	assert.Equal(t, []string{"join_request"}, h.notificationEvents(t, "owner"))
	assert.Equal(t, []string{"join_approved"}, h.notificationEvents(t, "joiner"))

	assert.ErrorIs(t, h.teams.RemoveMember(ctx, "joiner", team.ID, "owner"), ErrOwnerRemoval)
	require.NoError(t, h.teams.RemoveMember(ctx, "joiner", team.ID, "joiner"))
	member, err := h.teams.IsTeamMember(ctx, "joiner", team.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestRejectedJoinRequestDoesNotBlockANewOne(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	team, err := h.teams.CreateTeam(ctx, "owner", &dto.CreateTeamRequest{Name: "Puzzlers"})
	require.NoError(t, err)

	first, err := h.teams.RequestToJoin(ctx, "joiner", team.ID, nil)
	require.NoError(t, err)
	require.NoError(t, h.teams.RejectJoinRequest(ctx, "owner", first.ID))

	second, err := h.teams.RequestToJoin(ctx, "joiner", team.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	pending, err := h.teams.ListJoinRequests(ctx, "owner", team.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestPrivateTeamMembersHidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	private := false
	team, err := h.teams.CreateTeam(ctx, "owner", &dto.CreateTeamRequest{Name: "Secret Society", IsPublic: &private})
	require.NoError(t, err)
	assert.False(t, team.IsPublic)

	stored, err := h.teams.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublic)

	_, err = h.teams.GetTeamMembers(ctx, "outsider", team.ID)
	assert.ErrorIs(t, err, ErrPrivateTeam)

	members, err := h.teams.GetTeamMembers(ctx, "owner", team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	public, total, err := h.teams.ListPublicTeams(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, public)
	assert.Zero(t, total)
}

func TestTeamCapacity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	team, err := h.teams.CreateTeam(ctx, "owner", &dto.CreateTeamRequest{Name: "Duo", MaxMembers: 2})
	require.NoError(t, err)

	a, err := h.teams.RequestToJoin(ctx, "a", team.ID, nil)
	require.NoError(t, err)
	b, err := h.teams.RequestToJoin(ctx, "b", team.ID, nil)
	require.NoError(t, err)

	_, err = h.teams.ApproveJoinRequest(ctx, "owner", a.ID)
	require.NoError(t, err)
	_, err = h.teams.ApproveJoinRequest(ctx, "owner", b.ID)
	assert.ErrorIs(t, err, ErrTeamFull)

	_, err = h.teams.RequestToJoin(ctx, "c", team.ID, nil)
	assert.ErrorIs(t, err, ErrTeamFull)
}

func TestSuggestApproveAnswerFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "suggester", models.MembershipFree)
	h.profile(t, "moderator", models.MembershipPro)

	suggested, err := h.riddles.SuggestRiddle(ctx, "suggester", &dto.RiddleInput{
		Title:         "The Echo",
		Question:      "I speak without a mouth and hear without ears. What am I?",
		CorrectAnswer: "An echo",
		Difficulty:    "hard",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiddleSuggested, suggested.Status)
	assert.Equal(t, 30, suggested.BasePoints)
	assert.Equal(t, "the-echo", suggested.Slug)

	_, err = h.responses.SubmitResponse(ctx, "player", suggested.ID, "an echo")
	assert.ErrorIs(t, err, ErrRiddleUnavailable)

	_, err = h.riddles.GetRiddle(ctx, "player", suggested.ID)
	assert.ErrorIs(t, err, ErrRiddleNotFound)

	_, err = h.riddles.ApproveRiddle(ctx, "suggester", suggested.ID)
	assert.ErrorIs(t, err, ErrNotPro)

	approved, err := h.riddles.ApproveRiddle(ctx, "moderator", suggested.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiddleApproved, approved.Status)
	assert.Equal(t, []string{"approved"}, h.notificationEvents(t, "suggester"))

	_, err = h.riddles.ApproveRiddle(ctx, "moderator", suggested.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	seen, err := h.riddles.GetRiddle(ctx, "player", suggested.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiddleActive, seen.Status)
	assert.Empty(t, seen.CorrectAnswer)

	response, err := h.responses.SubmitResponse(ctx, "player", suggested.ID, "  AN ECHO ")
	require.NoError(t, err)
	assert.True(t, response.IsCorrect)
	assert.Equal(t, 30, response.PointsEarned)

	_, err = h.responses.SubmitResponse(ctx, "player", suggested.ID, "an echo")
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	stats, err := h.leaderboard.GetUserStats(ctx, "player")
	require.NoError(t, err)
	assert.Equal(t, int64(30), stats.TotalPoints)
	assert.Equal(t, int64(1), stats.RiddlesSolved)
	assert.Equal(t, 100, stats.AccuracyRate)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, []string{"first_solve"}, h.notificationEvents(t, "player"))
}

func TestWrongAnswerScoresZero(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)

	riddle, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Counting", Question: "How many legs does a spider have?",
		AnswerType: models.AnswerNumber, CorrectAnswer: "8", Difficulty: "medium",
	})
	require.NoError(t, err)

	response, err := h.responses.SubmitResponse(ctx, "player", riddle.ID, "6")
	require.NoError(t, err)
	assert.False(t, response.IsCorrect)
	assert.Zero(t, response.PointsEarned)

	updated, err := h.responses.UpdateResponse(ctx, "player", response.ID, "8.0")
	require.NoError(t, err)
	assert.True(t, updated.IsCorrect)
	assert.Equal(t, 20, updated.PointsEarned)

	_, err = h.responses.UpdateResponse(ctx, "intruder", response.ID, "8")
	assert.ErrorIs(t, err, ErrNotResponder)
}

func TestSubmitRespectsWindowBounds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)

	from := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	until := from.Add(2 * time.Hour)
	riddle, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Timed", Question: "q?", CorrectAnswer: "a",
		AvailableFrom: &from, AvailableUntil: &until,
	})
	require.NoError(t, err)

	h.responses.now = func() time.Time { return from.Add(-time.Second) }
	_, err = h.responses.SubmitResponse(ctx, "early", riddle.ID, "a")
	assert.ErrorIs(t, err, ErrRiddleUnavailable)

	h.responses.now = func() time.Time { return from }
	_, err = h.responses.SubmitResponse(ctx, "on-open", riddle.ID, "a")
	assert.NoError(t, err)

	h.responses.now = func() time.Time { return until }
	_, err = h.responses.SubmitResponse(ctx, "on-close", riddle.ID, "a")
	assert.NoError(t, err)

	h.responses.now = func() time.Time { return until.Add(time.Second) }
	_, err = h.responses.SubmitResponse(ctx, "late", riddle.ID, "a")
	assert.ErrorIs(t, err, ErrRiddleUnavailable)
}

func TestTeamRiddleRequestFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	team, err := h.teams.CreateTeam(ctx, "owner", &dto.CreateTeamRequest{Name: "Sphinxes"})
	require.NoError(t, err)

	input := &dto.CreateRiddleRequestInput{
		Title: "Sphinx", Question: "What walks on four legs in the morning?", CorrectAnswer: "a human",
	}
	_, err = h.requests.CreateRiddleRequest(ctx, "owner", team.ID, input)
	assert.ErrorIs(t, err, ErrMemberRequest)

	request, err := h.requests.CreateRiddleRequest(ctx, "outsider", team.ID, input)
	require.NoError(t, err)
	assert.Equal(t, models.RiddleRequestPending, request.Status)

	riddle, err := h.requests.ApproveRiddleRequest(ctx, "owner", request.ID)
	require.NoError(t, err)
	require.NotNil(t, riddle.TeamID)
	assert.Equal(t, team.ID, *riddle.TeamID)
	assert.Equal(t, models.RiddleActive, riddle.Status)

	_, err = h.requests.RejectRiddleRequest(ctx, "owner", request.ID)
	assert.ErrorIs(t, err, ErrRequestResolved)

	_, err = h.responses.SubmitResponse(ctx, "outsider", riddle.ID, "a human")
	assert.ErrorIs(t, err, ErrNotTeamMember)

	response, err := h.responses.SubmitResponse(ctx, "owner", riddle.ID, "A Human")
	require.NoError(t, err)
	assert.True(t, response.IsCorrect)

	board, err := h.leaderboard.GetTeamLeaderboard(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, int64(1), board[0].Rank)
	assert.Equal(t, int64(10), board[0].TotalPoints)
}

func TestNotificationPreferencesGateCreation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	disabled := false
	_, err := h.notifications.UpdatePreference(ctx, "user", &dto.UpdatePreferenceRequest{
		Type: models.NotificationTeam, Event: "join_request", Enabled: &disabled,
	})
	require.NoError(t, err)

	n, err := h.notifications.CreateNotificationWithPreferences(ctx, "user", models.NotificationTeam, "join_request", "t", "m", nil)
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = h.notifications.CreateNotificationWithPreferences(ctx, "user", models.NotificationTeam, "join_approved", "t", "m", nil)
	require.NoError(t, err)
	require.NotNil(t, n)

	count, err := h.notifications.UnreadCount(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, h.notifications.MarkAsRead(ctx, "user", n.ID))
	assert.ErrorIs(t, h.notifications.MarkAsRead(ctx, "other", n.ID), ErrNotificationNotFound)

	count, err = h.notifications.UnreadCount(ctx, "user")
	require.NoError(t, err)
	assert.Zero(t, count)
}
