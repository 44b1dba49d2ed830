package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSystemAnnouncementTally(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, userID := range []string{"alice", "bob", "carol"} {
		h.profile(t, userID, models.MembershipFree)
	}
	disabled := false
	_, err := h.notifications.UpdatePreference(ctx, "carol", &dto.UpdatePreferenceRequest{
		Type: models.NotificationSystem, Event: "announcement", Enabled: &disabled,
	})
	require.NoError(t, err)

	_, err = h.notifications.CreateSystemAnnouncement(ctx, &dto.AnnouncementRequest{Title: " ", Message: "m"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	result, err := h.notifications.CreateSystemAnnouncement(ctx, &dto.AnnouncementRequest{
		Title: "Season two", Message: "New riddles every day.",
	})
	require.NoError(t, err)
	assert.Equal(t, dto.AnnouncementResult{Sent: 2, Failed: 0, Skipped: 1}, *result)

	err = h.db.Callback().Create().Before("gorm:create").Register("test:fail_broken_inbox", func(tx *gorm.DB) {
		if n, ok := tx.Statement.Dest.(*models.Notification); ok && n.UserID == "broken" {
			_ = tx.AddError(errors.New("inbox unavailable"))
		}
	})
	require.NoError(t, err)

	result, err = h.notifications.CreateSystemAnnouncement(ctx, &dto.AnnouncementRequest{
		Title: "Maintenance", Message: "Back soon.", UserIDs: []string{"alice", "broken", "carol", "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, dto.AnnouncementResult{Sent: 1, Failed: 1, Skipped: 1}, *result)

	assert.Equal(t, []string{"announcement", "announcement"}, h.notificationEvents(t, "alice"))
	assert.Empty(t, h.notificationEvents(t, "carol"))

	marked, err := h.notifications.MarkAllAsRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	deleted, err := h.notifications.DeleteAllRead(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	list, err := h.notifications.ListNotifications(ctx, "alice", false, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.Zero(t, list.Unread)

	bobList, err := h.notifications.ListNotifications(ctx, "bob", true, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobList.Unread)
}

func TestGlobalStatsAndDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.profile(t, "pro", models.MembershipPro)
	h.profile(t, "alice", models.MembershipFree)
	h.profile(t, "bob", models.MembershipFree)

	wordplay, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Silent Letters", Question: "What word is spelled wrong in every dictionary?", CorrectAnswer: "wrong",
		Category: "Wordplay", Difficulty: "easy",
	})
	require.NoError(t, err)
	logic, err := h.riddles.CreateRiddle(ctx, "pro", &dto.RiddleInput{
		Title: "Two Doors", Question: "Which door leads out?", CorrectAnswer: "left",
		Category: "Logic", Difficulty: "hard",
	})
	require.NoError(t, err)

	_, err = h.responses.SubmitResponse(ctx, "alice", logic.ID, "left")
	require.NoError(t, err)
	_, err = h.responses.SubmitResponse(ctx, "bob", wordplay.ID, "dictionary")
	require.NoError(t, err)

	stats, err := h.leaderboard.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Zero(t, stats.TotalTeams)
	assert.Equal(t, int64(2), stats.TotalRiddles)
	assert.Equal(t, int64(2), stats.TotalResponses)
	assert.Equal(t, int64(2), stats.ActiveRiddles)
	assert.InDelta(t, 50.0, stats.AverageAccuracy, 0.001)
	assert.Equal(t, "logic", stats.MostPopularCategory)
	assert.Equal(t, "easy", stats.MostPopularDifficulty)

	dashboard, err := h.leaderboard.GetDashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(30), dashboard.User.TotalPoints)
	require.NotNil(t, dashboard.User.Rank)
	assert.Equal(t, int64(1), *dashboard.User.Rank)
	assert.Equal(t, int64(2), dashboard.Global.TotalResponses)
	require.Len(t, dashboard.RecentResponses, 1)
	assert.Equal(t, "Two Doors", dashboard.RecentResponses[0].RiddleTitle)
	require.Len(t, dashboard.TopPerformers, 1)
	assert.Equal(t, "alice", dashboard.TopPerformers[0].UserID)
}

func TestMembershipWebhookFlipsTier(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	memberships := NewMembershipService(h.db, h.notifications)

	membership := func() models.Membership {
		profile, err := h.profiles.GetProfileByUserID(ctx, "buyer")
		require.NoError(t, err)
		return profile.Membership
	}
	subscription := func() models.SubscriptionStatus {
		var sub models.Subscription
		require.NoError(t, h.db.Where("user_id = ?", "buyer").First(&sub).Error)
		return sub.Status
	}

	err := memberships.HandleWebhookEvent(ctx, &dto.BillingEvent{Type: EventInitialPurchase})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, memberships.HandleWebhookEvent(ctx, &dto.BillingEvent{
		Type: EventInitialPurchase, AppUserID: "buyer", ProductID: "pro_monthly",
		PurchasedAtMs: 1767225600000, ExpirationAtMs: 1769904000000,
	}))
	assert.Equal(t, models.MembershipPro, membership())
	assert.Equal(t, models.SubscriptionActive, subscription())
	assert.True(t, h.profiles.IsPro(ctx, "buyer"))

	require.NoError(t, memberships.HandleWebhookEvent(ctx, &dto.BillingEvent{Type: EventRenewal, OriginalAppUserID: "buyer"}))
	assert.Equal(t, []string{"membership_changed"}, h.notificationEvents(t, "buyer"))

	require.NoError(t, memberships.HandleWebhookEvent(ctx, &dto.BillingEvent{Type: EventCancellation, AppUserID: "buyer"}))
	assert.Equal(t, models.SubscriptionCancelled, subscription())
	assert.Equal(t, models.MembershipPro, membership())

	require.NoError(t, memberships.HandleWebhookEvent(ctx, &dto.BillingEvent{Type: EventExpiration, AppUserID: "buyer"}))
	assert.Equal(t, models.SubscriptionExpired, subscription())
	assert.Equal(t, models.MembershipFree, membership())
	assert.False(t, h.profiles.IsPro(ctx, "buyer"))
	assert.Equal(t, []string{"membership_changed", "membership_changed"}, h.notificationEvents(t, "buyer"))

	require.NoError(t, memberships.HandleWebhookEvent(ctx, &dto.BillingEvent{Type: "TEST", AppUserID: "buyer"}))
	assert.Equal(t, models.MembershipFree, membership())
}
