package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RiddleRequestService handles proposals from non-members asking a team to
// publish a riddle.
type RiddleRequestService struct {
	db            *gorm.DB
	notifier      Notifier
	filter        *ContentFilter
	defaultWindow time.Duration
	now           func() time.Time
}

func NewRiddleRequestService(db *gorm.DB, notifier Notifier, filter *ContentFilter, defaultWindow time.Duration) *RiddleRequestService {
	if defaultWindow <= 0 {
		defaultWindow = 24 * time.Hour
	}
	return &RiddleRequestService{
		db:            db,
		notifier:      notifier,
		filter:        filter,
		defaultWindow: defaultWindow,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *RiddleRequestService) CreateRiddleRequest(ctx context.Context, userID string, teamID uuid.UUID, in *dto.CreateRiddleRequestInput) (*models.RiddleRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	team, err := loadTeam(db, "teams.id = ?", teamID)
	if err != nil {
		return nil, err
	}
	member, err := isMember(db, userID, teamID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, ErrMemberRequest
	}

	content := riddleContent{
		Title:         in.Title,
		Question:      in.Question,
		AnswerType:    in.AnswerType,
		CorrectAnswer: in.CorrectAnswer,
		Options:       in.Options,
		Category:      in.Category,
		Difficulty:    in.Difficulty,
	}
	if err := content.normalize(s.filter); err != nil {
		return nil, err
	}
	message := truncate(strings.TrimSpace(in.Message), 500)
	if err := s.filter.Screen(map[string]string{"message": message}); err != nil {
		return nil, err
	}

	request := models.RiddleRequest{
		ID:            uuid.New(),
		TeamID:        teamID,
		RequesterID:   userID,
		Title:         content.Title,
		Question:      content.Question,
		AnswerType:    content.AnswerType,
		CorrectAnswer: content.CorrectAnswer,
		Options:       content.optionsOrNil(),
		Category:      content.Category,
		Difficulty:    content.Difficulty,
		Message:       message,
		Status:        models.RiddleRequestPending,
	}
	if err := db.Create(&request).Error; err != nil {
		return nil, fmt.Errorf("failed to create riddle request: %w", err)
	}

	notify(ctx, s.notifier, team.OwnerID, models.NotificationTeam, "riddle_request",
		"New riddle request", fmt.Sprintf("Someone proposed %q for %s.", request.Title, team.Name),
		map[string]interface{}{"team_id": team.ID, "request_id": request.ID})
	return &request, nil
}

// ListTeamRiddleRequests is owner only. An empty status lists every request.
func (s *RiddleRequestService) ListTeamRiddleRequests(ctx context.Context, userID string, teamID uuid.UUID, status models.RiddleRequestStatus) ([]models.RiddleRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := requireOwner(db, userID, teamID); err != nil {
		return nil, err
	}
	query := db.Where("team_id = ?", teamID)
	switch status {
	case "":
	case models.RiddleRequestPending, models.RiddleRequestApproved, models.RiddleRequestRejected:
		query = query.Where("status = ?", status)
	default:
		return nil, invalidf("invalid request status %q", status)
	}
	requests := make([]models.RiddleRequest, 0)
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list riddle requests: %w", err)
	}
	return requests, nil
}

func (s *RiddleRequestService) ListMyRiddleRequests(ctx context.Context, userID string) ([]models.RiddleRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	requests := make([]models.RiddleRequest, 0)
	err := s.db.WithContext(ctx).Where("requester_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list riddle requests: %w", err)
	}
	return requests, nil
}

// ApproveRiddleRequest materializes the request into an active team riddle
// and marks it approved in one transaction.
func (s *RiddleRequestService) ApproveRiddleRequest(ctx context.Context, userID string, requestID uuid.UUID) (*models.Riddle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	request, team, err := s.loadForOwner(db, userID, requestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	teamID := request.TeamID
	requester := request.RequesterID
	riddle := &models.Riddle{
		ID:             uuid.New(),
		Title:          request.Title,
		Slug:           GenerateSlug(request.Title),
		Question:       request.Question,
		AnswerType:     request.AnswerType,
		CorrectAnswer:  request.CorrectAnswer,
		Options:        request.Options,
		Category:       request.Category,
		Difficulty:     request.Difficulty,
		BasePoints:     CalculatePoints(request.Difficulty),
		AvailableFrom:  now,
		AvailableUntil: now.Add(s.defaultWindow),
		Timezone:       "UTC",
		Status:         models.RiddleActive,
		TeamID:         &teamID,
		CreatedBy:      userID,
		SuggestedBy:    &requester,
		ApprovedBy:     &userID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(riddle).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSlugTaken
			}
			return err
		}
		return resolveRiddleRequest(tx, request.ID, userID, map[string]interface{}{
			"status":    models.RiddleRequestApproved,
			"riddle_id": riddle.ID,
		})
	})
	if err != nil {
		if isKnown(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to approve riddle request: %w", err)
	}

	notify(ctx, s.notifier, requester, models.NotificationRiddle, "request_approved",
		"Riddle request approved", fmt.Sprintf("%s published your riddle %q.", team.Name, riddle.Title),
		map[string]interface{}{"team_id": team.ID, "riddle_id": riddle.ID})
	return riddle, nil
}

func (s *RiddleRequestService) RejectRiddleRequest(ctx context.Context, userID string, requestID uuid.UUID) (*models.RiddleRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	request, team, err := s.loadForOwner(db, userID, requestID)
	if err != nil {
		return nil, err
	}
	if err := resolveRiddleRequest(db, request.ID, userID, map[string]interface{}{
		"status": models.RiddleRequestRejected,
	}); err != nil {
		return nil, err
	}
	request.Status = models.RiddleRequestRejected
	request.ReviewedBy = &userID

	notify(ctx, s.notifier, request.RequesterID, models.NotificationRiddle, "request_rejected",
		"Riddle request declined", fmt.Sprintf("%s declined your riddle %q.", team.Name, request.Title),
		map[string]interface{}{"team_id": team.ID, "request_id": request.ID})
	return request, nil
}

func (s *RiddleRequestService) loadForOwner(db *gorm.DB, userID string, requestID uuid.UUID) (*models.RiddleRequest, *models.Team, error) {
	var request models.RiddleRequest
	err := db.Where("id = ?", requestID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrRiddleRequestNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load riddle request: %w", err)
	}
	team, err := requireOwner(db, userID, request.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if request.Status != models.RiddleRequestPending {
		return nil, nil, ErrRequestResolved
	}
	return &request, team, nil
}

func resolveRiddleRequest(db *gorm.DB, requestID uuid.UUID, reviewer string, updates map[string]interface{}) error {
	updates["reviewed_by"] = reviewer
	updates["reviewed_at"] = time.Now().UTC()
	result := db.Model(&models.RiddleRequest{}).
		Where("id = ? AND status = ?", requestID, models.RiddleRequestPending).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update riddle request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRequestResolved
	}
	return nil
}
