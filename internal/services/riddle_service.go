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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RiddleService struct {
	db            *gorm.DB
	notifier      Notifier
	invalidator   StatsInvalidator
	filter        *ContentFilter
	defaultWindow time.Duration
	imageHosts    []string
	now           func() time.Time
}

func NewRiddleService(db *gorm.DB, notifier Notifier, invalidator StatsInvalidator, filter *ContentFilter, defaultWindow time.Duration, imageHosts []string) *RiddleService {
	if defaultWindow <= 0 {
		defaultWindow = 24 * time.Hour
	}
	return &RiddleService{
		db:            db,
		notifier:      notifier,
		invalidator:   invalidator,
		filter:        filter,
		defaultWindow: defaultWindow,
		imageHosts:    imageHosts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SuggestRiddle lets any user propose a riddle for moderation.
func (s *RiddleService) SuggestRiddle(ctx context.Context, userID string, in *dto.RiddleInput) (*models.Riddle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	riddle, err := s.buildRiddle(in)
	if err != nil {
		return nil, err
	}
	riddle.Status = models.RiddleSuggested
	riddle.CreatedBy = userID
	riddle.SuggestedBy = &userID
	riddle.TeamID = nil

	if err := s.insert(ctx, riddle); err != nil {
		return nil, err
	}
	return riddle, nil
}

// CreateRiddle publishes directly. Pro members may create any riddle; a team
// owner may create riddles scoped to their team.
func (s *RiddleService) CreateRiddle(ctx context.Context, userID string, in *dto.RiddleInput) (*models.Riddle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}
	if !CanModerate(actor) {
		if in.TeamID == nil {
			return nil, ErrNotCreatorTeam
		}
		if _, err := requireOwner(db, userID, *in.TeamID); err != nil {
			if errors.Is(err, ErrNotTeamOwner) {
				return nil, ErrNotCreatorTeam
			}
			return nil, err
		}
	} else if in.TeamID != nil {
		if _, err := loadTeam(db, "teams.id = ?", *in.TeamID); err != nil {
			return nil, err
		}
	}

	status := in.Status
	if status == "" {
		status = models.RiddleActive
	}
	switch status {
	case models.RiddleDraft, models.RiddleApproved, models.RiddleScheduled, models.RiddleActive:
	default:
		return nil, invalidf("riddles cannot be created with status %q", status)
	}

	riddle, err := s.buildRiddle(in)
	if err != nil {
		return nil, err
	}
	riddle.Status = status
	riddle.CreatedBy = userID
	riddle.TeamID = in.TeamID
	if status != models.RiddleDraft {
		riddle.ApprovedBy = &userID
	}

	if err := s.insert(ctx, riddle); err != nil {
		return nil, err
	}
	return riddle, nil
}

func (s *RiddleService) ApproveRiddle(ctx context.Context, userID string, riddleID uuid.UUID) (*models.Riddle, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, userID); err != nil {
		return nil, err
	}
	riddle, err := loadRiddle(db, riddleID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"status":           models.RiddleApproved,
		"approved_by":      userID,
		"rejection_reason": "",
	}
	if from, until, moved := s.rebaseExpired(riddle); moved {
		updates["available_from"] = from
		updates["available_until"] = until
		riddle.AvailableFrom, riddle.AvailableUntil = from, until
	}
	err = transition(db, riddleID, []models.RiddleStatus{models.RiddleDraft, models.RiddleSuggested}, updates)
	if err != nil {
		return nil, err
	}
	riddle.Status = models.RiddleApproved
	riddle.ApprovedBy = &userID
	riddle.RejectionReason = ""

	if riddle.SuggestedBy != nil {
		notify(ctx, s.notifier, *riddle.SuggestedBy, models.NotificationRiddle, "approved",
			"Riddle approved", fmt.Sprintf("Your riddle %q was approved.", riddle.Title),
			map[string]interface{}{"riddle_id": riddle.ID, "slug": riddle.Slug})
	}
	return riddle, nil
}

func (s *RiddleService) RejectRiddle(ctx context.Context, userID string, riddleID uuid.UUID, reason string) (*models.Riddle, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, userID); err != nil {
		return nil, err
	}
	reason = truncate(strings.TrimSpace(reason), 500)
	riddle, err := loadRiddle(db, riddleID)
	if err != nil {
		return nil, err
	}
	err = transition(db, riddleID, []models.RiddleStatus{models.RiddleDraft, models.RiddleSuggested, models.RiddleApproved}, map[string]interface{}{
		"status":           models.RiddleArchived,
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	riddle.Status = models.RiddleArchived
	riddle.RejectionReason = reason

	if riddle.SuggestedBy != nil {
		message := fmt.Sprintf("Your riddle %q was not accepted.", riddle.Title)
		if reason != "" {
			message += " Reason: " + reason
		}
		notify(ctx, s.notifier, *riddle.SuggestedBy, models.NotificationRiddle, "rejected",
			"Riddle rejected", message,
			map[string]interface{}{"riddle_id": riddle.ID, "reason": reason})
	}
	return riddle, nil
}

func (s *RiddleService) ScheduleRiddle(ctx context.Context, userID string, riddleID uuid.UUID, req *dto.ScheduleRiddleRequest) (*models.Riddle, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, userID); err != nil {
		return nil, err
	}
	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if err := validateWindow(req.AvailableFrom, req.AvailableUntil, timezone); err != nil {
		return nil, err
	}
	if _, err := loadRiddle(db, riddleID); err != nil {
		return nil, err
	}
	// Riddles the sweeper already moved on can be rescheduled until someone answers.
	result := db.Model(&models.Riddle{}).
		Where("id = ?", riddleID).
		Where("(status IN ? OR (status IN ? AND NOT EXISTS (SELECT 1 FROM riddle_responses rr WHERE rr.riddle_id = riddles.id)))",
			[]models.RiddleStatus{models.RiddleApproved, models.RiddleScheduled},
			[]models.RiddleStatus{models.RiddleActive, models.RiddleCompleted}).
		Updates(map[string]interface{}{
			"status":          models.RiddleScheduled,
			"available_from":  req.AvailableFrom.UTC(),
			"available_until": req.AvailableUntil.UTC(),
			"timezone":        timezone,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to schedule riddle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	return loadRiddle(db, riddleID)
}

func (s *RiddleService) UpdateRiddle(ctx context.Context, userID string, riddleID uuid.UUID, req *dto.UpdateRiddleRequest) (*models.Riddle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	riddle, actor, err := s.loadEditable(db, userID, riddleID)
	if err != nil {
		return nil, err
	}

	content := riddleContent{
		Title:         riddle.Title,
		Question:      riddle.Question,
		AnswerType:    riddle.AnswerType,
		CorrectAnswer: riddle.CorrectAnswer,
		Options:       riddle.Options,
		Category:      riddle.Category,
		Difficulty:    riddle.Difficulty,
	}
	if req.Title != nil {
		content.Title = *req.Title
	}
	if req.Question != nil {
		content.Question = *req.Question
	}
	if req.AnswerType != nil {
		content.AnswerType = *req.AnswerType
	}
	if req.CorrectAnswer != nil {
		content.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Options != nil {
		content.Options = *req.Options
	}
	if req.Category != nil {
		content.Category = *req.Category
	}
	if req.Difficulty != nil {
		content.Difficulty = *req.Difficulty
	}
	if err := content.normalize(s.filter); err != nil {
		return nil, err
	}

	from, until, timezone := riddle.AvailableFrom, riddle.AvailableUntil, riddle.Timezone
	if req.AvailableFrom != nil {
		from = req.AvailableFrom.UTC()
	}
	if req.AvailableUntil != nil {
		until = req.AvailableUntil.UTC()
	}
	if req.Timezone != nil {
		timezone = strings.TrimSpace(*req.Timezone)
	}
	if err := validateWindow(from, until, timezone); err != nil {
		return nil, err
	}
	imageURL := riddle.ImageURL
	if req.ImageURL != nil {
		if err := ValidateImageURL(*req.ImageURL, s.imageHosts); err != nil {
			return nil, err
		}
		imageURL = *req.ImageURL
	}

	updates := map[string]interface{}{
		"title":           content.Title,
		"slug":            GenerateSlug(content.Title),
		"question":        content.Question,
		"answer_type":     content.AnswerType,
		"correct_answer":  content.CorrectAnswer,
		"options":         optionsValue(content.optionsOrNil()),
		"category":        content.Category,
		"difficulty":      content.Difficulty,
		"base_points":     CalculatePoints(content.Difficulty),
		"image_url":       imageURL,
		"available_from":  from,
		"available_until": until,
		"timezone":        timezone,
	}
	if err := db.Model(&models.Riddle{}).Where("id = ?", riddleID).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to update riddle: %w", err)
	}

	updated, err := loadRiddle(db, riddleID)
	if err != nil {
		return nil, err
	}
	return s.present(actor, updated), nil
}

// DeleteRiddle hard-deletes the riddle; its responses cascade.
func (s *RiddleService) DeleteRiddle(ctx context.Context, userID string, riddleID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if _, _, err := s.loadEditable(db, userID, riddleID); err != nil {
		return err
	}
	if err := db.Where("id = ?", riddleID).Delete(&models.Riddle{}).Error; err != nil {
		return fmt.Errorf("failed to delete riddle: %w", err)
	}
	invalidate(ctx, s.invalidator)
	return nil
}

func (s *RiddleService) GetRiddle(ctx context.Context, userID string, riddleID uuid.UUID) (*models.Riddle, error) {
	return s.getVisible(ctx, userID, "id = ?", riddleID)
}

func (s *RiddleService) GetRiddleBySlug(ctx context.Context, userID, slug string) (*models.Riddle, error) {
	return s.getVisible(ctx, userID, "slug = ?", slug)
}

// ListRiddles filters riddles the caller may see. Unpublished riddles are
// listed for moderators and for their own creators only.
func (s *RiddleService) ListRiddles(ctx context.Context, userID string, filter dto.RiddleFilter) ([]models.Riddle, int64, error) {
	if err := requireUser(userID); err != nil {
		return nil, 0, err
	}
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, 0, err
	}
	limit, offset := clampPage(filter.Limit, filter.Offset, 20, 100)

	query := s.visibleTo(db.Model(&models.Riddle{}), actor)
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, 0, invalidf("invalid status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", strings.ToLower(filter.Category))
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", strings.ToLower(filter.Difficulty))
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count riddles: %w", err)
	}
	riddles := make([]models.Riddle, 0, limit)
	if err := query.Order("available_from DESC, id").Limit(limit).Offset(offset).Find(&riddles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list riddles: %w", err)
	}
	return s.presentAll(actor, riddles), total, nil
}

// ListActiveRiddles returns riddles answerable right now, soonest to close first.
func (s *RiddleService) ListActiveRiddles(ctx context.Context, userID string) ([]models.Riddle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	riddles := make([]models.Riddle, 0)
	err = s.visibleTo(db.Model(&models.Riddle{}), actor).
		Where("status IN ?", []models.RiddleStatus{models.RiddleApproved, models.RiddleScheduled, models.RiddleActive}).
		Where("available_from <= ? AND available_until >= ?", now, now).
		Order("available_until ASC, id").
		Find(&riddles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active riddles: %w", err)
	}
	return s.presentAll(actor, riddles), nil
}

// ListModerationQueue returns suggested riddles oldest first.
func (s *RiddleService) ListModerationQueue(ctx context.Context, userID string, limit, offset int) ([]models.Riddle, int64, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.requireModerator(db, userID); err != nil {
		return nil, 0, err
	}
	limit, offset = clampPage(limit, offset, 50, 200)

	query := db.Model(&models.Riddle{}).Where("status = ?", models.RiddleSuggested)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count moderation queue: %w", err)
	}
	riddles := make([]models.Riddle, 0, limit)
	if err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&riddles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list moderation queue: %w", err)
	}
	return riddles, total, nil
}

func (s *RiddleService) buildRiddle(in *dto.RiddleInput) (*models.Riddle, error) {
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
	if err := ValidateImageURL(in.ImageURL, s.imageHosts); err != nil {
		return nil, err
	}
	from, until := s.window(in.AvailableFrom, in.AvailableUntil)
	timezone := strings.TrimSpace(in.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if err := validateWindow(from, until, timezone); err != nil {
		return nil, err
	}

	return &models.Riddle{
		ID:             uuid.New(),
		Title:          content.Title,
		Slug:           GenerateSlug(content.Title),
		Question:       content.Question,
		AnswerType:     content.AnswerType,
		CorrectAnswer:  content.CorrectAnswer,
		Options:        content.optionsOrNil(),
		Category:       content.Category,
		Difficulty:     content.Difficulty,
		BasePoints:     CalculatePoints(content.Difficulty),
		ImageURL:       in.ImageURL,
		AvailableFrom:  from,
		AvailableUntil: until,
		Timezone:       timezone,
	}, nil
}

// window fills missing bounds: from defaults to now, until to from plus the
// configured default window.
func (s *RiddleService) window(from, until *time.Time) (time.Time, time.Time) {
	start := s.now()
	if from != nil {
		start = from.UTC()
	}
	end := start.Add(s.defaultWindow)
	if until != nil {
		end = until.UTC()
	}
	return start, end
}

// rebaseExpired moves a window that closed before approval to start now,
// keeping its length.
func (s *RiddleService) rebaseExpired(riddle *models.Riddle) (time.Time, time.Time, bool) {
	now := s.now()
	if !riddle.AvailableUntil.Before(now) {
		return riddle.AvailableFrom, riddle.AvailableUntil, false
	}
	length := riddle.AvailableUntil.Sub(riddle.AvailableFrom)
	if length <= 0 {
		length = s.defaultWindow
	}
	return now, now.Add(length), true
}

func (s *RiddleService) insert(ctx context.Context, riddle *models.Riddle) error {
	if err := s.db.WithContext(ctx).Create(riddle).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create riddle: %w", err)
	}
	return nil
}

func (s *RiddleService) requireModerator(db *gorm.DB, userID string) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}
	if !CanModerate(actor) {
		return nil, ErrNotPro
	}
	return actor, nil
}

func (s *RiddleService) loadEditable(db *gorm.DB, userID string, riddleID uuid.UUID) (*models.Riddle, *models.Profile, error) {
	riddle, err := loadRiddle(db, riddleID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, nil, err
	}
	if !CanEditRiddle(actor, riddle) {
		return nil, nil, ErrCannotEdit
	}
	return riddle, actor, nil
}

func (s *RiddleService) getVisible(ctx context.Context, userID, where string, arg interface{}) (*models.Riddle, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	actor, err := loadActor(db, userID)
	if err != nil {
		return nil, err
	}
	var riddle models.Riddle
	err = db.Where(where, arg).First(&riddle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRiddleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load riddle: %w", err)
	}
	if !published(riddle.Status) && riddle.Status != models.RiddleCompleted &&
		riddle.CreatedBy != userID && !CanModerate(actor) {
		return nil, ErrRiddleNotFound
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
	return s.present(actor, &riddle), nil
}

func (s *RiddleService) visibleTo(query *gorm.DB, actor *models.Profile) *gorm.DB {
	query = query.Where("(team_id IS NULL OR team_id IN (SELECT team_id FROM team_memberships WHERE user_id = ?))", actor.UserID)
	if !CanModerate(actor) {
		query = query.Where("(status NOT IN ? OR created_by = ?)",
			[]models.RiddleStatus{models.RiddleDraft, models.RiddleSuggested, models.RiddleArchived}, actor.UserID)
	}
	return query
}

// present reports the window-derived status and hides the answer from
// callers who cannot edit the riddle.
func (s *RiddleService) present(actor *models.Profile, riddle *models.Riddle) *models.Riddle {
	riddle.Status = EffectiveStatus(riddle, s.now())
	if !CanEditRiddle(actor, riddle) {
		riddle.CorrectAnswer = ""
	}
	return riddle
}

func (s *RiddleService) presentAll(actor *models.Profile, riddles []models.Riddle) []models.Riddle {
	for i := range riddles {
		s.present(actor, &riddles[i])
	}
	return riddles
}

func loadRiddle(db *gorm.DB, riddleID uuid.UUID) (*models.Riddle, error) {
	var riddle models.Riddle
	err := db.Where("id = ?", riddleID).First(&riddle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRiddleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load riddle: %w", err)
	}
	return &riddle, nil
}

// loadActor returns the caller's profile, or a free-tier stand-in when the
// caller has not created one yet.
func loadActor(db *gorm.DB, userID string) (*models.Profile, error) {
	profile, err := findProfile(db, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return &models.Profile{UserID: userID, Membership: models.MembershipFree}, nil
	}
	return profile, err
}

// transition applies updates only while the riddle is in one of from.
func transition(db *gorm.DB, riddleID uuid.UUID, from []models.RiddleStatus, updates map[string]interface{}) error {
	result := db.Model(&models.Riddle{}).Where("id = ? AND status IN ?", riddleID, from).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update riddle status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func optionsValue(options []string) interface{} {
	if options == nil {
		return gorm.Expr("NULL")
	}
	return datatypes.JSONSlice[string](options)
}
