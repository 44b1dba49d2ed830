package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationRiddle      NotificationType = "riddle"
	NotificationTeam        NotificationType = "team"
	NotificationAchievement NotificationType = "achievement"
	NotificationAdmin       NotificationType = "admin"
	NotificationSystem      NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationRiddle, NotificationTeam, NotificationAchievement, NotificationAdmin, NotificationSystem:
		return true
	}
	return false
}

type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string           `gorm:"size:255;not null;index:idx_notification_user_read,priority:1" json:"user_id"`
	Type      NotificationType `gorm:"size:20;not null" json:"type"`
	Event     string           `gorm:"size:50;not null" json:"event"`
	Title     string           `gorm:"size:200;not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Metadata  datatypes.JSON   `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	Read      bool             `gorm:"not null;default:false;index:idx_notification_user_read,priority:2" json:"read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}

// NotificationPreference gates notification creation per (type, event). A
// missing row means enabled.
type NotificationPreference struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       string           `gorm:"size:255;not null;uniqueIndex:idx_pref_user_type_event,priority:1" json:"user_id"`
	Type         NotificationType `gorm:"size:20;not null;uniqueIndex:idx_pref_user_type_event,priority:2" json:"type"`
	Event        string           `gorm:"size:50;not null;uniqueIndex:idx_pref_user_type_event,priority:3" json:"event"`
	Enabled      bool             `gorm:"not null" json:"enabled"`
	EmailEnabled bool             `gorm:"not null;default:false" json:"email_enabled"`
	PushEnabled  bool             `gorm:"not null;default:false" json:"push_enabled"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
