package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultDisplayName   = "Riddler"
	maxDisplayNameLength = 50
)

type ProfileService struct {
	db         *gorm.DB
	imageHosts []string
}

func NewProfileService(db *gorm.DB, imageHosts []string) *ProfileService {
	return &ProfileService{db: db, imageHosts: imageHosts}
}

func (s *ProfileService) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return findProfile(s.db.WithContext(ctx), userID)
}

// EnsureProfile returns the caller's profile, creating it on first visit.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID string, req *dto.EnsureProfileRequest) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	name := defaultDisplayName
	if req != nil && strings.TrimSpace(req.DisplayName) != "" {
		name = truncate(strings.TrimSpace(req.DisplayName), maxDisplayNameLength)
	}

	profile := models.Profile{
		UserID:      userID,
		DisplayName: name,
		Membership:  models.MembershipFree,
	}
	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return findProfile(db, userID)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLength {
			return nil, invalidf("display name must be 1-%d characters", maxDisplayNameLength)
		}
		updates["display_name"] = name
	}
	if req.ImageURL != nil {
		if err := ValidateImageURL(*req.ImageURL, s.imageHosts); err != nil {
			return nil, err
		}
		updates["image_url"] = *req.ImageURL
	}
	if len(updates) == 0 {
		return profile, nil
	}

	if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return findProfile(s.db.WithContext(ctx), userID)
}

// IsPro reports whether userID has a pro profile. Lookup failures count as not pro.
func (s *ProfileService) IsPro(ctx context.Context, userID string) bool {
	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			slog.Error("pro check failed", "action", "profile.is_pro", "user_id", userID, "error", err)
		}
		return false
	}
	return profile.IsPro()
}

func findProfile(db *gorm.DB, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthenticated
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
