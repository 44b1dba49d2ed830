package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// announcementConcurrency bounds parallel inserts during a fan-out.
const announcementConcurrency = 8

// Notifier is the part of NotificationService other services emit events through.
type Notifier interface {
	CreateNotificationWithPreferences(ctx context.Context, userID string, typ models.NotificationType, event, title, message string, metadata map[string]interface{}) (*models.Notification, error)
}

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationWithPreferences stores a notification unless the user has
// explicitly disabled (typ, event). A skipped notification returns (nil, nil).
func (s *NotificationService) CreateNotificationWithPreferences(ctx context.Context, userID string, typ models.NotificationType, event, title, message string, metadata map[string]interface{}) (*models.Notification, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !typ.Valid() {
		return nil, invalidf("invalid notification type %q", typ)
	}
	if strings.TrimSpace(event) == "" || strings.TrimSpace(title) == "" {
		return nil, invalidf("notification event and title are required")
	}

	db := s.db.WithContext(ctx)
	enabled, err := s.isEnabled(db, userID, typ, event)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, nil
	}

	meta, err := encodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	n := models.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     typ,
		Event:    event,
		Title:    title,
		Message:  message,
		Metadata: meta,
	}
	if err := db.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

func (s *NotificationService) isEnabled(db *gorm.DB, userID string, typ models.NotificationType, event string) (bool, error) {
	var pref models.NotificationPreference
	err := db.Where("user_id = ? AND type = ? AND event = ?", userID, typ, event).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load notification preference: %w", err)
	}
	return PreferenceAllows(&pref), nil
}

// PreferenceAllows treats a missing preference as enabled.
func PreferenceAllows(pref *models.NotificationPreference) bool {
	return pref == nil || pref.Enabled
}

// CreateSystemAnnouncement fans an announcement out to userIDs, or to every
// profile when none are given. Per-user failures are logged and counted.
func (s *NotificationService) CreateSystemAnnouncement(ctx context.Context, req *dto.AnnouncementRequest) (*dto.AnnouncementResult, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, invalidf("announcement title and message are required")
	}

	recipients := dedupe(req.UserIDs)
	if len(recipients) == 0 {
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).Order("user_id").Pluck("user_id", &recipients).Error; err != nil {
			return nil, fmt.Errorf("failed to list recipients: %w", err)
		}
	}

	var sent, failed, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(announcementConcurrency)
	for _, userID := range recipients {
		userID := userID
		g.Go(func() error {
			n, err := s.CreateNotificationWithPreferences(gctx, userID, models.NotificationSystem, "announcement", req.Title, req.Message, req.Metadata)
			switch {
			case err != nil:
				failed.Add(1)
				slog.Error("announcement delivery failed", "action", "create_system_announcement", "user_id", userID, "error", err)
			case n == nil:
				skipped.Add(1)
			default:
				sent.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return &dto.AnnouncementResult{
		Sent:    int(sent.Load()),
		Failed:  int(failed.Load()),
		Skipped: int(skipped.Load()),
	}, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*dto.NotificationList, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset, 20, 100)
	db := s.db.WithContext(ctx)

	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	notifications := make([]models.Notification, 0, limit)
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationList{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Limit:         limit,
		Offset:        offset,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now().UTC()})
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now().UTC()})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) DeleteAllRead(ctx context.Context, userID string) (int64, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("user_id = ? AND read = ?", userID, true).Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) GetPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	prefs := make([]models.NotificationPreference, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("type, event").Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreference upserts the (type, event) toggle. Unset fields keep their
// current value, or the defaults for a new row.
func (s *NotificationService) UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*models.NotificationPreference, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, invalidf("invalid notification type %q", req.Type)
	}
	if strings.TrimSpace(req.Event) == "" {
		return nil, invalidf("event is required")
	}

	db := s.db.WithContext(ctx)
	pref := models.NotificationPreference{UserID: userID, Type: req.Type, Event: req.Event, Enabled: true}
	err := db.Where("user_id = ? AND type = ? AND event = ?", userID, req.Type, req.Event).First(&pref).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load preference: %w", err)
	}
	if req.Enabled != nil {
		pref.Enabled = *req.Enabled
	}
	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.PushEnabled != nil {
		pref.PushEnabled = *req.PushEnabled
	}
	if pref.ID == uuid.Nil {
		pref.ID = uuid.New()
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}, {Name: "event"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "email_enabled", "push_enabled", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save preference: %w", err)
	}
	return &pref, nil
}

// notify emits a best-effort notification; failures are logged, never returned.
func notify(ctx context.Context, n Notifier, userID string, typ models.NotificationType, event, title, message string, metadata map[string]interface{}) {
	if n == nil || userID == "" {
		return
	}
	if _, err := n.CreateNotificationWithPreferences(ctx, userID, typ, event, title, message, metadata); err != nil {
		slog.Error("notification failed", "action", string(typ)+"."+event, "user_id", userID, "error", err)
	}
}

func encodeMetadata(metadata map[string]interface{}) (datatypes.JSON, error) {
	if len(metadata) == 0 {
		return datatypes.JSON("{}"), nil
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return nil, invalidf("metadata is not valid JSON")
	}
	return datatypes.JSON(b), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
