package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakMilestones are the current-streak lengths that earn an achievement.
var StreakMilestones = map[int]bool{3: true, 7: true, 30: true}

const maxAnswerLength = 1000

type ResponseService struct {
	db          *gorm.DB
	notifier    Notifier
	invalidator StatsInvalidator
	now         func() time.Time
}

func NewResponseService(db *gorm.DB, notifier Notifier, invalidator StatsInvalidator) *ResponseService {
	return &ResponseService{
		db:          db,
		notifier:    notifier,
		invalidator: invalidator,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SubmitResponse scores and records the caller's single answer to a riddle.
// The unique (riddle_id, user_id) index decides duplicates, so concurrent
// submissions cannot both succeed.
func (s *ResponseService) SubmitResponse(ctx context.Context, userID string, riddleID uuid.UUID, answer string) (*models.RiddleResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	answer, err := normalizeAnswer(answer)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	now := s.now()
	riddle, err := s.loadAnswerable(db, userID, riddleID, now)
	if err != nil {
		return nil, err
	}

	isCorrect, points := score(riddle, answer)
	response := models.RiddleResponse{
		ID:           uuid.New(),
		RiddleID:     riddle.ID,
		UserID:       userID,
		Answer:       answer,
		IsCorrect:    isCorrect,
		PointsEarned: points,
		SubmittedAt:  now,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "riddle_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&response)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save response: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyResponded
	}

	invalidate(ctx, s.invalidator)
	if isCorrect {
		s.awardAchievements(ctx, db, userID, now)
	}
	return &response, nil
}

// UpdateResponse re-scores the caller's answer while the riddle is still open.
func (s *ResponseService) UpdateResponse(ctx context.Context, userID string, responseID uuid.UUID, answer string) (*models.RiddleResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	answer, err := normalizeAnswer(answer)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var response models.RiddleResponse
	err = db.Where("id = ?", responseID).First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResponseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	if response.UserID != userID {
		return nil, ErrNotResponder
	}

	now := s.now()
	riddle, err := s.loadAnswerable(db, userID, response.RiddleID, now)
	if err != nil {
		return nil, err
	}
	wasCorrect := response.IsCorrect
	isCorrect, points := score(riddle, answer)

	err = db.Model(&response).Updates(map[string]interface{}{
		"answer":        answer,
		"is_correct":    isCorrect,
		"points_earned": points,
		"submitted_at":  now,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}
	response.Answer = answer
	response.IsCorrect = isCorrect
	response.PointsEarned = points
	response.SubmittedAt = now

	invalidate(ctx, s.invalidator)
	if isCorrect && !wasCorrect {
		s.awardAchievements(ctx, db, userID, now)
	}
	return &response, nil
}

func (s *ResponseService) GetUserResponse(ctx context.Context, userID string, riddleID uuid.UUID) (*models.RiddleResponse, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var response models.RiddleResponse
	err := s.db.WithContext(ctx).Where("riddle_id = ? AND user_id = ?", riddleID, userID).First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResponseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	return &response, nil
}

// ListUserResponses pages the caller's answers, newest first.
func (s *ResponseService) ListUserResponses(ctx context.Context, userID string, limit, offset int) ([]dto.RecentResponse, int64, error) {
	if err := requireUser(userID); err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset, 20, 100)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.RiddleResponse{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}
	responses, err := recentResponses(db, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

func (s *ResponseService) loadAnswerable(db *gorm.DB, userID string, riddleID uuid.UUID, now time.Time) (*models.Riddle, error) {
	riddle, err := loadRiddle(db, riddleID)
	if err != nil {
		return nil, err
	}
	if riddle.TeamID != nil {
		member, err := isMember(db, userID, *riddle.TeamID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotTeamMember
		}
	}
	if !IsAnswerable(riddle, now) {
		return nil, ErrRiddleUnavailable
	}
	return riddle, nil
}

// awardAchievements runs after a correct answer was stored at now. first_solve
// is sent once per user, even when a response flips back to correct.
func (s *ResponseService) awardAchievements(ctx context.Context, db *gorm.DB, userID string, now time.Time) {
	var solved int64
	if err := db.Model(&models.RiddleResponse{}).Where("user_id = ? AND is_correct", userID).Count(&solved).Error; err != nil {
		slog.Error("achievement check failed", "action", "response.achievements", "user_id", userID, "error", err)
		return
	}
	if solved == 1 {
		var awarded int64
		err := db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND event = ?", userID, models.NotificationAchievement, "first_solve").
			Count(&awarded).Error
		if err != nil {
			slog.Error("achievement check failed", "action", "response.achievements", "user_id", userID, "error", err)
			return
		}
		if awarded == 0 {
			notify(ctx, s.notifier, userID, models.NotificationAchievement, "first_solve",
				"First riddle solved", "You solved your first riddle. Welcome to the league!",
				map[string]interface{}{"riddles_solved": solved})
		}
	}

	var solvedToday int64
	err := db.Model(&models.RiddleResponse{}).
		Where("user_id = ? AND is_correct AND submitted_at >= ?", userID, truncateDay(now)).
		Count(&solvedToday).Error
	if err != nil {
		slog.Error("achievement check failed", "action", "response.achievements", "user_id", userID, "error", err)
		return
	}
	if solvedToday != 1 {
		return
	}
	days, err := correctDays(db, userID)
	if err != nil {
		slog.Error("achievement check failed", "action", "response.achievements", "user_id", userID, "error", err)
		return
	}
	current, _ := ComputeStreaks(days, now)
	if StreakMilestones[current] {
		notify(ctx, s.notifier, userID, models.NotificationAchievement, "streak_milestone",
			fmt.Sprintf("%d-day streak", current), fmt.Sprintf("You have solved riddles %d days in a row.", current),
			map[string]interface{}{"streak": current})
	}
}

func normalizeAnswer(answer string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", invalidf("answer is required")
	}
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		return "", invalidf("answer must be at most %d characters", maxAnswerLength)
	}
	return answer, nil
}

// score returns correctness and the points it earns.
func score(riddle *models.Riddle, answer string) (bool, int) {
	if !ValidateAnswer(answer, riddle.CorrectAnswer, riddle.AnswerType) {
		return false, 0
	}
	if riddle.BasePoints > 0 {
		return true, riddle.BasePoints
	}
	return true, CalculatePoints(riddle.Difficulty)
}

// correctDays lists the distinct UTC days on which userID answered correctly.
func correctDays(db *gorm.DB, userID string) ([]time.Time, error) {
	var rows []struct{ Day time.Time }
	err := db.Raw(`
		SELECT DISTINCT (submitted_at AT TIME ZONE 'UTC')::date AS day
		FROM riddle_responses
		WHERE user_id = ? AND is_correct
		ORDER BY day
	`, userID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load streak days: %w", err)
	}
	days := make([]time.Time, 0, len(rows))
	for _, r := range rows {
		days = append(days, r.Day)
	}
	return days, nil
}

func recentResponses(db *gorm.DB, userID string, limit, offset int) ([]dto.RecentResponse, error) {
	responses := make([]dto.RecentResponse, 0, limit)
	err := db.Raw(`
		SELECT rr.id AS response_id, r.id AS riddle_id, r.title AS riddle_title, r.slug AS riddle_slug,
			r.category, r.difficulty, rr.is_correct, rr.points_earned, rr.submitted_at
		FROM riddle_responses rr
		JOIN riddles r ON r.id = rr.riddle_id
		WHERE rr.user_id = ?
		ORDER BY rr.submitted_at DESC, rr.id
		LIMIT ? OFFSET ?
	`, userID, limit, offset).Scan(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return responses, nil
}
