package models

import (
	"time"

	"github.com/google/uuid"
)

type Membership string

const (
	MembershipFree Membership = "free"
	MembershipPro  Membership = "pro"
)

// Profile is the per-user record keyed by the external identity. Points,
// solves and streaks are derived from riddle_responses at read time.
type Profile struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      string     `gorm:"size:255;not null;uniqueIndex" json:"user_id"`
	DisplayName string     `gorm:"size:100;not null" json:"display_name"`
	ImageURL    string     `gorm:"type:text" json:"image_url,omitempty"`
	Membership  Membership `gorm:"size:20;not null;default:'free'" json:"membership"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *Profile) IsPro() bool {
	return p != nil && p.Membership == MembershipPro
}
