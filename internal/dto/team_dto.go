package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
	MaxMembers  int    `json:"max_members"`
	ImageURL    string `json:"image_url"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
	MaxMembers  *int    `json:"max_members"`
	ImageURL    *string `json:"image_url"`
}

type JoinTeamRequest struct {
	Message string `json:"message"`
}

// UserTeam is a team seen from one member's perspective.
type UserTeam struct {
	TeamID      uuid.UUID       `json:"team_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	IsPublic    bool            `json:"is_public"`
	OwnerID     string          `json:"owner_id"`
	MaxMembers  int             `json:"max_members"`
	ImageURL    string          `json:"image_url,omitempty"`
	MemberCount int64           `json:"member_count"`
	Role        models.TeamRole `json:"role"`
	JoinedAt    time.Time       `json:"joined_at"`
}

type TeamMember struct {
	UserID      string          `json:"user_id"`
	DisplayName string          `json:"display_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Role        models.TeamRole `json:"role"`
	JoinedAt    time.Time       `json:"joined_at"`
}
