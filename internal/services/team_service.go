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

const (
	minTeamMembers = 2
	maxTeamMembers = 500
)

const teamSelect = "teams.*, (SELECT COUNT(*) FROM team_memberships m WHERE m.team_id = teams.id) AS member_count"

type TeamService struct {
	db                *gorm.DB
	notifier          Notifier
	invalidator       StatsInvalidator
	filter            *ContentFilter
	defaultMaxMembers int
	imageHosts        []string
}

func NewTeamService(db *gorm.DB, notifier Notifier, invalidator StatsInvalidator, filter *ContentFilter, defaultMaxMembers int, imageHosts []string) *TeamService {
	if defaultMaxMembers < minTeamMembers {
		defaultMaxMembers = 20
	}
	return &TeamService{
		db:                db,
		notifier:          notifier,
		invalidator:       invalidator,
		filter:            filter,
		defaultMaxMembers: defaultMaxMembers,
		imageHosts:        imageHosts,
	}
}

// CreateTeam creates the team and its owner membership in one transaction.
func (s *TeamService) CreateTeam(ctx context.Context, userID string, req *dto.CreateTeamRequest) (*models.Team, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := validateTeamName(name); err != nil {
		return nil, err
	}
	slug := GenerateSlug(name)
	if slug == "" {
		return nil, invalidf("team name must contain letters or digits")
	}
	if err := s.filter.Screen(map[string]string{"name": name, "description": req.Description}); err != nil {
		return nil, err
	}
	if err := ValidateImageURL(req.ImageURL, s.imageHosts); err != nil {
		return nil, err
	}
	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = s.defaultMaxMembers
	}
	if maxMembers < minTeamMembers || maxMembers > maxTeamMembers {
		return nil, invalidf("max_members must be between %d and %d", minTeamMembers, maxTeamMembers)
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	team := &models.Team{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		IsPublic:    isPublic,
		OwnerID:     userID,
		MaxMembers:  maxMembers,
		ImageURL:    req.ImageURL,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSlugTaken
			}
			return err
		}
		return tx.Create(&models.TeamMembership{
			ID:       uuid.New(),
			TeamID:   team.ID,
			UserID:   userID,
			Role:     models.TeamRoleOwner,
			JoinedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	team.MemberCount = 1
	invalidate(ctx, s.invalidator)
	return team, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	return loadTeam(s.db.WithContext(ctx), "teams.id = ?", teamID)
}

func (s *TeamService) GetTeamBySlug(ctx context.Context, slug string) (*models.Team, error) {
	return loadTeam(s.db.WithContext(ctx), "teams.slug = ?", slug)
}

func (s *TeamService) ListPublicTeams(ctx context.Context, limit, offset int) ([]models.Team, int64, error) {
	limit, offset = clampPage(limit, offset, 20, 100)
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Team{}).Where("is_public = ?", true).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count teams: %w", err)
	}
	teams := make([]models.Team, 0, limit)
	err := db.Model(&models.Team{}).Select(teamSelect).
		Where("teams.is_public = ?", true).
		Order("teams.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&teams).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

func (s *TeamService) GetUserTeams(ctx context.Context, userID string) ([]dto.UserTeam, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	teams := make([]dto.UserTeam, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT t.id AS team_id, t.name, t.slug, COALESCE(t.description, '') AS description, t.is_public, t.owner_id,
			t.max_members, COALESCE(t.image_url, '') AS image_url, m.role, m.joined_at,
			(SELECT COUNT(*) FROM team_memberships c WHERE c.team_id = t.id) AS member_count
		FROM team_memberships m
		JOIN teams t ON t.id = m.team_id
		WHERE m.user_id = ?
		ORDER BY m.joined_at ASC
	`, userID).Scan(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user teams: %w", err)
	}
	return teams, nil
}

// GetTeamMembers lists members owner first. Private teams are visible to
// their members only.
func (s *TeamService) GetTeamMembers(ctx context.Context, userID string, teamID uuid.UUID) ([]dto.TeamMember, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	team, err := loadTeam(db, "teams.id = ?", teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsPublic {
		member, err := isMember(db, userID, teamID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrPrivateTeam
		}
	}

	members := make([]dto.TeamMember, 0, team.MemberCount)
	err = db.Raw(`
		SELECT m.user_id, COALESCE(p.display_name, m.user_id) AS display_name,
			COALESCE(p.image_url, '') AS image_url, m.role, m.joined_at
		FROM team_memberships m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.team_id = ?
		ORDER BY CASE WHEN m.role = 'owner' THEN 0 ELSE 1 END, m.joined_at ASC
	`, teamID).Scan(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	return members, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, userID string, teamID uuid.UUID, req *dto.UpdateTeamRequest) (*models.Team, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	team, err := requireOwner(db, userID, teamID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	screen := map[string]string{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateTeamName(name); err != nil {
			return nil, err
		}
		slug := GenerateSlug(name)
		if slug == "" {
			return nil, invalidf("team name must contain letters or digits")
		}
		updates["name"] = name
		updates["slug"] = slug
		screen["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
		screen["description"] = *req.Description
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if req.MaxMembers != nil {
		max := *req.MaxMembers
		if max < minTeamMembers || max > maxTeamMembers {
			return nil, invalidf("max_members must be between %d and %d", minTeamMembers, maxTeamMembers)
		}
		if int64(max) < team.MemberCount {
			return nil, invalidf("max_members cannot be below the current member count (%d)", team.MemberCount)
		}
		updates["max_members"] = max
	}
	if req.ImageURL != nil {
		if err := ValidateImageURL(*req.ImageURL, s.imageHosts); err != nil {
			return nil, err
		}
		updates["image_url"] = *req.ImageURL
	}
	if err := s.filter.Screen(screen); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return team, nil
	}

	if err := db.Model(&models.Team{}).Where("id = ?", teamID).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	invalidate(ctx, s.invalidator)
	return loadTeam(db, "teams.id = ?", teamID)
}

// DeleteTeam removes the team; memberships, requests and team riddles cascade.
func (s *TeamService) DeleteTeam(ctx context.Context, userID string, teamID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if _, err := requireOwner(db, userID, teamID); err != nil {
		return err
	}
	if err := db.Where("id = ?", teamID).Delete(&models.Team{}).Error; err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	invalidate(ctx, s.invalidator)
	return nil
}

func (s *TeamService) RequestToJoin(ctx context.Context, userID string, teamID uuid.UUID, req *dto.JoinTeamRequest) (*models.TeamJoinRequest, error) {
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
		return nil, ErrAlreadyMember
	}
	if team.MemberCount >= int64(team.MaxMembers) {
		return nil, ErrTeamFull
	}
	message := ""
	if req != nil {
		message = truncate(strings.TrimSpace(req.Message), 500)
	}
	if err := s.filter.Screen(map[string]string{"message": message}); err != nil {
		return nil, err
	}

	var pending int64
	if err := db.Model(&models.TeamJoinRequest{}).
		Where("team_id = ? AND user_id = ? AND status = ?", teamID, userID, models.JoinRequestPending).
		Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to check join requests: %w", err)
	}
	if pending > 0 {
		return nil, ErrJoinRequestPending
	}

	request := models.TeamJoinRequest{
		ID:      uuid.New(),
		TeamID:  teamID,
		UserID:  userID,
		Message: message,
		Status:  models.JoinRequestPending,
	}
	if err := db.Create(&request).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrJoinRequestPending
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	notify(ctx, s.notifier, team.OwnerID, models.NotificationTeam, "join_request",
		"New join request", fmt.Sprintf("Someone asked to join %s.", team.Name),
		map[string]interface{}{"team_id": team.ID, "request_id": request.ID, "user_id": userID})
	return &request, nil
}

func (s *TeamService) CancelJoinRequest(ctx context.Context, userID string, requestID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	request, err := loadJoinRequest(db, requestID)
	if err != nil {
		return err
	}
	if request.UserID != userID {
		return ErrNotRequester
	}
	return resolveJoinRequest(db, request.ID, models.JoinRequestCancelled, userID)
}

// ListJoinRequests returns the team's pending requests, oldest first.
func (s *TeamService) ListJoinRequests(ctx context.Context, userID string, teamID uuid.UUID) ([]models.TeamJoinRequest, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := requireOwner(db, userID, teamID); err != nil {
		return nil, err
	}
	requests := make([]models.TeamJoinRequest, 0)
	err := db.Where("team_id = ? AND status = ?", teamID, models.JoinRequestPending).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list join requests: %w", err)
	}
	return requests, nil
}

// ApproveJoinRequest inserts the membership and marks the request approved in
// one transaction. The team row is locked so concurrent approvals cannot
// overfill it.
func (s *TeamService) ApproveJoinRequest(ctx context.Context, userID string, requestID uuid.UUID) (*models.TeamMembership, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	request, err := loadJoinRequest(db, requestID)
	if err != nil {
		return nil, err
	}
	team, err := requireOwner(db, userID, request.TeamID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.JoinRequestPending {
		return nil, ErrRequestResolved
	}

	membership := models.TeamMembership{
		ID:       uuid.New(),
		TeamID:   request.TeamID,
		UserID:   request.UserID,
		Role:     models.TeamRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var locked models.Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", team.ID).First(&locked).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.TeamMembership{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(locked.MaxMembers) {
			return ErrTeamFull
		}
		if err := tx.Create(&membership).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return err
		}
		return resolveJoinRequest(tx, request.ID, models.JoinRequestApproved, userID)
	})
	if err != nil {
		if isKnown(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to approve join request: %w", err)
	}

	invalidate(ctx, s.invalidator)
	notify(ctx, s.notifier, request.UserID, models.NotificationTeam, "join_approved",
		"Join request approved", fmt.Sprintf("You are now a member of %s.", team.Name),
		map[string]interface{}{"team_id": team.ID})
	return &membership, nil
}

func (s *TeamService) RejectJoinRequest(ctx context.Context, userID string, requestID uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	request, err := loadJoinRequest(db, requestID)
	if err != nil {
		return err
	}
	team, err := requireOwner(db, userID, request.TeamID)
	if err != nil {
		return err
	}
	if err := resolveJoinRequest(db, request.ID, models.JoinRequestRejected, userID); err != nil {
		return err
	}
	notify(ctx, s.notifier, request.UserID, models.NotificationTeam, "join_rejected",
		"Join request declined", fmt.Sprintf("Your request to join %s was declined.", team.Name),
		map[string]interface{}{"team_id": team.ID})
	return nil
}

// RemoveMember lets the owner remove any non-owner, and anyone remove themselves.
func (s *TeamService) RemoveMember(ctx context.Context, userID string, teamID uuid.UUID, memberUserID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if strings.TrimSpace(memberUserID) == "" {
		return invalidf("member user id is required")
	}
	db := s.db.WithContext(ctx)

	var membership models.TeamMembership
	err := db.Where("team_id = ? AND user_id = ?", teamID, memberUserID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMembershipNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load membership: %w", err)
	}
	if membership.Role == models.TeamRoleOwner {
		return ErrOwnerRemoval
	}

	var team *models.Team
	if userID != memberUserID {
		if team, err = requireOwner(db, userID, teamID); err != nil {
			return err
		}
	}
	if err := db.Delete(&membership).Error; err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	invalidate(ctx, s.invalidator)

	if team != nil {
		notify(ctx, s.notifier, memberUserID, models.NotificationTeam, "member_removed",
			"Removed from team", fmt.Sprintf("You were removed from %s.", team.Name),
			map[string]interface{}{"team_id": team.ID})
	}
	return nil
}

func (s *TeamService) IsTeamOwner(ctx context.Context, userID string, teamID uuid.UUID) bool {
	_, err := requireOwner(s.db.WithContext(ctx), userID, teamID)
	return err == nil
}

func (s *TeamService) IsTeamMember(ctx context.Context, userID string, teamID uuid.UUID) (bool, error) {
	return isMember(s.db.WithContext(ctx), userID, teamID)
}

func validateTeamName(name string) error {
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return invalidf("team name must be 3-100 characters")
	}
	return nil
}

func loadTeam(db *gorm.DB, where string, arg interface{}) (*models.Team, error) {
	var team models.Team
	err := db.Model(&models.Team{}).Select(teamSelect).Where(where, arg).Take(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return &team, nil
}

func requireOwner(db *gorm.DB, userID string, teamID uuid.UUID) (*models.Team, error) {
	team, err := loadTeam(db, "teams.id = ?", teamID)
	if err != nil {
		return nil, err
	}
	if team.OwnerID != userID {
		return nil, ErrNotTeamOwner
	}
	return team, nil
}

func isMember(db *gorm.DB, userID string, teamID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.TeamMembership{}).Where("team_id = ? AND user_id = ?", teamID, userID).Count(&count).Error
	if err != nil {
		slog.Error("membership check failed", "action", "team.is_member", "user_id", userID, "team_id", teamID, "error", err)
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return count > 0, nil
}

func loadJoinRequest(db *gorm.DB, requestID uuid.UUID) (*models.TeamJoinRequest, error) {
	var request models.TeamJoinRequest
	err := db.Where("id = ?", requestID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJoinRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load join request: %w", err)
	}
	return &request, nil
}

// resolveJoinRequest moves a pending request to status. A request that is no
// longer pending yields ErrRequestResolved.
func resolveJoinRequest(db *gorm.DB, requestID uuid.UUID, status models.JoinRequestStatus, reviewer string) error {
	now := time.Now().UTC()
	result := db.Model(&models.TeamJoinRequest{}).
		Where("id = ? AND status = ?", requestID, models.JoinRequestPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewer,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update join request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRequestResolved
	}
	return nil
}
