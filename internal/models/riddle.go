package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnswerType string

const (
	AnswerText           AnswerType = "text"
	AnswerNumber         AnswerType = "number"
	AnswerBoolean        AnswerType = "boolean"
	AnswerMultipleChoice AnswerType = "multiple_choice"
)

func (t AnswerType) Valid() bool {
	switch t {
	case AnswerText, AnswerNumber, AnswerBoolean, AnswerMultipleChoice:
		return true
	}
	return false
}

type RiddleStatus string

const (
	RiddleDraft     RiddleStatus = "draft"
	RiddleSuggested RiddleStatus = "suggested"
	RiddleApproved  RiddleStatus = "approved"
	RiddleScheduled RiddleStatus = "scheduled"
	RiddleActive    RiddleStatus = "active"
	RiddleCompleted RiddleStatus = "completed"
	RiddleArchived  RiddleStatus = "archived"
)

func (s RiddleStatus) Valid() bool {
	switch s {
	case RiddleDraft, RiddleSuggested, RiddleApproved, RiddleScheduled,
		RiddleActive, RiddleCompleted, RiddleArchived:
		return true
	}
	return false
}

type Riddle struct {
	ID              uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string                      `gorm:"size:200;not null" json:"title"`
	Slug            string                      `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Question        string                      `gorm:"type:text;not null" json:"question"`
	AnswerType      AnswerType                  `gorm:"size:20;not null;default:'text'" json:"answer_type"`
	CorrectAnswer   string                      `gorm:"type:text;not null" json:"correct_answer,omitempty"`
	Options         datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"options,omitempty"`
	Category        string                      `gorm:"size:50;not null;default:'general';index" json:"category"`
	Difficulty      string                      `gorm:"size:20;not null;default:'easy';index" json:"difficulty"`
	BasePoints      int                         `gorm:"not null;default:10" json:"base_points"`
	ImageURL        string                      `gorm:"type:text" json:"image_url,omitempty"`
	AvailableFrom   time.Time                   `gorm:"not null;index" json:"available_from"`
	AvailableUntil  time.Time                   `gorm:"not null;index" json:"available_until"`
	Timezone        string                      `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	Status          RiddleStatus                `gorm:"size:20;not null;default:'draft';index" json:"status"`
	TeamID          *uuid.UUID                  `gorm:"type:uuid;index" json:"team_id,omitempty"`
	CreatedBy       string                      `gorm:"size:255;not null;index" json:"created_by"`
	SuggestedBy     *string                     `gorm:"size:255" json:"suggested_by,omitempty"`
	ApprovedBy      *string                     `gorm:"size:255" json:"approved_by,omitempty"`
	RejectionReason string                      `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	Team            *Team                       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

type RiddleRequestStatus string

const (
	RiddleRequestPending  RiddleRequestStatus = "pending"
	RiddleRequestApproved RiddleRequestStatus = "approved"
	RiddleRequestRejected RiddleRequestStatus = "rejected"
)

// RiddleRequest is a non-member's proposal for a team riddle. Approval
// materializes it into a Riddle and records RiddleID.
type RiddleRequest struct {
	ID            uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TeamID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"team_id"`
	RequesterID   string                      `gorm:"size:255;not null;index" json:"requester_id"`
	Title         string                      `gorm:"size:200;not null" json:"title"`
	Question      string                      `gorm:"type:text;not null" json:"question"`
	AnswerType    AnswerType                  `gorm:"size:20;not null;default:'text'" json:"answer_type"`
	CorrectAnswer string                      `gorm:"type:text;not null" json:"correct_answer"`
	Options       datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"options,omitempty"`
	Category      string                      `gorm:"size:50;not null;default:'general'" json:"category"`
	Difficulty    string                      `gorm:"size:20;not null;default:'easy'" json:"difficulty"`
	Message       string                      `gorm:"size:500" json:"message,omitempty"`
	Status        RiddleRequestStatus         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedBy    *string                     `gorm:"size:255" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time                  `json:"reviewed_at,omitempty"`
	RiddleID      *uuid.UUID                  `gorm:"type:uuid" json:"riddle_id,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	Team          *Team                       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

// RiddleResponse is unique per (riddle, user) at the database level.
type RiddleResponse struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RiddleID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_response_riddle_user,priority:1" json:"riddle_id"`
	UserID       string    `gorm:"size:255;not null;uniqueIndex:idx_response_riddle_user,priority:2;index" json:"user_id"`
	Answer       string    `gorm:"type:text;not null" json:"answer"`
	IsCorrect    bool      `gorm:"not null;default:false" json:"is_correct"`
	PointsEarned int       `gorm:"not null;default:0" json:"points_earned"`
	SubmittedAt  time.Time `gorm:"not null;index" json:"submitted_at"`
	Riddle       *Riddle   `gorm:"foreignKey:RiddleID;constraint:OnDelete:CASCADE" json:"-"`
}
