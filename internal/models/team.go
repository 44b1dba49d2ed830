package models

import (
	"time"

	"github.com/google/uuid"
)

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleMember TeamRole = "member"
)

type JoinRequestStatus string

const (
	JoinRequestPending   JoinRequestStatus = "pending"
	JoinRequestApproved  JoinRequestStatus = "approved"
	JoinRequestRejected  JoinRequestStatus = "rejected"
	JoinRequestCancelled JoinRequestStatus = "cancelled"
)

type Team struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"not null" json:"is_public"`
	OwnerID     string    `gorm:"size:255;not null;index" json:"owner_id"`
	MaxMembers  int       `gorm:"not null;default:20" json:"max_members"`
	ImageURL    string    `gorm:"type:text" json:"image_url,omitempty"`
	MemberCount int64     `gorm:"->;-:migration" json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TeamMembership rows are unique per (team, user); the creator holds the only
// owner row.
type TeamMembership struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_team_user,priority:1" json:"team_id"`
	UserID   string    `gorm:"size:255;not null;uniqueIndex:idx_membership_team_user,priority:2;index" json:"user_id"`
	Role     TeamRole  `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
	Team     *Team     `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

// TeamJoinRequest has a partial unique index on (team_id, user_id) for
// pending rows, created in database.Migrate.
type TeamJoinRequest struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TeamID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"team_id"`
	UserID     string            `gorm:"size:255;not null;index" json:"user_id"`
	Message    string            `gorm:"size:500" json:"message,omitempty"`
	Status     JoinRequestStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedBy *string           `gorm:"size:255" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Team       *Team             `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}
