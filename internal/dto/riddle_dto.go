package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
)

type RiddleInput struct {
	Title          string              `json:"title"`
	Question       string              `json:"question"`
	AnswerType     models.AnswerType   `json:"answer_type"`
	CorrectAnswer  string              `json:"correct_answer"`
	Options        []string            `json:"options"`
	Category       string              `json:"category"`
	Difficulty     string              `json:"difficulty"`
	ImageURL       string              `json:"image_url"`
	AvailableFrom  *time.Time          `json:"available_from"`
	AvailableUntil *time.Time          `json:"available_until"`
	Timezone       string              `json:"timezone"`
	TeamID         *uuid.UUID          `json:"team_id"`
	Status         models.RiddleStatus `json:"status"`
}

type UpdateRiddleRequest struct {
	Title          *string            `json:"title"`
	Question       *string            `json:"question"`
	AnswerType     *models.AnswerType `json:"answer_type"`
	CorrectAnswer  *string            `json:"correct_answer"`
	Options        *[]string          `json:"options"`
	Category       *string            `json:"category"`
	Difficulty     *string            `json:"difficulty"`
	ImageURL       *string            `json:"image_url"`
	AvailableFrom  *time.Time         `json:"available_from"`
	AvailableUntil *time.Time         `json:"available_until"`
	Timezone       *string            `json:"timezone"`
}

type RejectRiddleRequest struct {
	Reason string `json:"reason"`
}

type ScheduleRiddleRequest struct {
	AvailableFrom  time.Time `json:"available_from"`
	AvailableUntil time.Time `json:"available_until"`
	Timezone       string    `json:"timezone"`
}

type RiddleFilter struct {
	Status     models.RiddleStatus
	Category   string
	Difficulty string
	TeamID     *uuid.UUID
	Limit      int
	Offset     int
}

type CreateRiddleRequestInput struct {
	Title         string            `json:"title"`
	Question      string            `json:"question"`
	AnswerType    models.AnswerType `json:"answer_type"`
	CorrectAnswer string            `json:"correct_answer"`
	Options       []string          `json:"options"`
	Category      string            `json:"category"`
	Difficulty    string            `json:"difficulty"`
	Message       string            `json:"message"`
}

type SubmitResponseRequest struct {
	Answer string `json:"answer"`
}

// RecentResponse is one of a user's answers joined with its riddle.
type RecentResponse struct {
	ResponseID   uuid.UUID `json:"response_id"`
	RiddleID     uuid.UUID `json:"riddle_id"`
	RiddleTitle  string    `json:"riddle_title"`
	RiddleSlug   string    `json:"riddle_slug"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	IsCorrect    bool      `json:"is_correct"`
	PointsEarned int       `json:"points_earned"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
