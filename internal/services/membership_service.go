package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Billing event types that change the membership tier.
const (
	EventInitialPurchase = "INITIAL_PURCHASE"
	EventRenewal         = "RENEWAL"
	EventUncancellation  = "UNCANCELLATION"
	EventCancellation    = "CANCELLATION"
	EventExpiration      = "EXPIRATION"
)

// MembershipService keeps the profile tier in step with billing events.
type MembershipService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewMembershipService(db *gorm.DB, notifier Notifier) *MembershipService {
	return &MembershipService{db: db, notifier: notifier}
}

// HandleWebhookEvent applies one billing event. Unknown event types are
// acknowledged and ignored.
func (s *MembershipService) HandleWebhookEvent(ctx context.Context, event *dto.BillingEvent) error {
	userID := strings.TrimSpace(event.AppUserID)
	if userID == "" {
		userID = strings.TrimSpace(event.OriginalAppUserID)
	}

	switch event.Type {
	case EventInitialPurchase, EventRenewal, EventUncancellation:
		if userID == "" {
			return invalidf("billing event has no app_user_id")
		}
		return s.activate(ctx, userID, event)
	case EventCancellation:
		if userID == "" {
			return invalidf("billing event has no app_user_id")
		}
		return s.setStatus(s.db.WithContext(ctx), userID, models.SubscriptionCancelled)
	case EventExpiration:
		if userID == "" {
			return invalidf("billing event has no app_user_id")
		}
		return s.expire(ctx, userID)
	default:
		return nil
	}
}

func (s *MembershipService) activate(ctx context.Context, userID string, event *dto.BillingEvent) error {
	sub := models.Subscription{
		ID:                 uuid.New(),
		UserID:             userID,
		ProductID:          event.ProductID,
		Status:             models.SubscriptionActive,
		CurrentPeriodStart: msToTime(event.PurchasedAtMs),
		CurrentPeriodEnd:   msToTime(event.ExpirationAtMs),
	}
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"product_id", "status", "current_period_start", "current_period_end", "updated_at"}),
		}).Create(&sub).Error
		if err != nil {
			return err
		}
		changed, err = setMembership(tx, userID, models.MembershipPro)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to activate membership: %w", err)
	}
	if changed {
		notify(ctx, s.notifier, userID, models.NotificationSystem, "membership_changed",
			"Welcome to Pro", "Your pro membership is active. You can now moderate riddles.",
			map[string]interface{}{"membership": models.MembershipPro})
	}
	return nil
}

func (s *MembershipService) expire(ctx context.Context, userID string) error {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.setStatus(tx, userID, models.SubscriptionExpired); err != nil {
			return err
		}
		var err error
		changed, err = setMembership(tx, userID, models.MembershipFree)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to expire membership: %w", err)
	}
	if changed {
		notify(ctx, s.notifier, userID, models.NotificationSystem, "membership_changed",
			"Pro membership ended", "Your pro membership has expired.",
			map[string]interface{}{"membership": models.MembershipFree})
	}
	return nil
}

func (s *MembershipService) setStatus(db *gorm.DB, userID string, status models.SubscriptionStatus) error {
	return db.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Update("status", status).Error
}

// setMembership creates the profile when missing and reports whether the tier
// actually changed.
func setMembership(tx *gorm.DB, userID string, membership models.Membership) (bool, error) {
	profile := models.Profile{
		ID:          uuid.New(),
		UserID:      userID,
		DisplayName: defaultDisplayName,
		Membership:  models.MembershipFree,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&profile).Error; err != nil {
		return false, err
	}
	result := tx.Model(&models.Profile{}).
		Where("user_id = ? AND membership <> ?", userID, membership).
		Update("membership", membership)
	return result.RowsAffected > 0, result.Error
}

func msToTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
