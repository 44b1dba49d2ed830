package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/cache"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// competitionRank is the one ranking rule: equal totals share a rank and the
// next distinct total skips ahead (1, 1, 3).
const competitionRank = "RANK() OVER (ORDER BY total_points DESC)"

// rankedUsersCTE derives per-user totals from responses and ranks every user
// with a positive total.
const rankedUsersCTE = `
	WITH totals AS (
		SELECT user_id,
			SUM(points_earned) AS total_points,
			COUNT(*) FILTER (WHERE is_correct) AS riddles_solved
		FROM riddle_responses
		GROUP BY user_id
	), ranked AS (
		SELECT user_id, total_points, riddles_solved, ` + competitionRank + ` AS rank
		FROM totals
		WHERE total_points > 0
	)`

const rankedTeamsCTE = `
	WITH user_totals AS (
		SELECT user_id, SUM(points_earned) AS total_points
		FROM riddle_responses
		GROUP BY user_id
	), team_totals AS (
		SELECT m.team_id, COUNT(*) AS member_count, COALESCE(SUM(u.total_points), 0) AS total_points
		FROM team_memberships m
		LEFT JOIN user_totals u ON u.user_id = m.user_id
		GROUP BY m.team_id
	), ranked AS (
		SELECT team_id, member_count, total_points, ` + competitionRank + ` AS rank
		FROM team_totals
		WHERE total_points > 0
	)`

const topPerformers = 5

type LeaderboardService struct {
	db    *gorm.DB
	cache *cache.Cache
	now   func() time.Time
}

// NewLeaderboardService builds the ranking engine. c may be nil.
func NewLeaderboardService(db *gorm.DB, c *cache.Cache) *LeaderboardService {
	return &LeaderboardService{
		db:    db,
		cache: c,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Invalidate drops every cached leaderboard page and stats snapshot.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	for _, prefix := range []string{cache.PrefixLeaderboard, cache.PrefixStats} {
		if err := s.cache.InvalidatePrefix(ctx, prefix); err != nil {
			slog.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

func (s *LeaderboardService) GetIndividualLeaderboard(ctx context.Context, limit, offset int) ([]dto.LeaderboardEntry, error) {
	limit, offset = clampPage(limit, offset, 50, 100)
	entries := make([]dto.LeaderboardEntry, 0, limit)
	key := fmt.Sprintf("%sindividual:%d:%d", cache.PrefixLeaderboard, limit, offset)
	err := s.cached(ctx, key, &entries, func() error {
		return s.individual(s.db.WithContext(ctx), limit, offset, &entries)
	})
	return entries, err
}

func (s *LeaderboardService) GetTeamLeaderboard(ctx context.Context, limit, offset int) ([]dto.TeamLeaderboardEntry, error) {
	limit, offset = clampPage(limit, offset, 50, 100)
	entries := make([]dto.TeamLeaderboardEntry, 0, limit)
	key := fmt.Sprintf("%steams:%d:%d", cache.PrefixLeaderboard, limit, offset)
	err := s.cached(ctx, key, &entries, func() error {
		err := s.db.WithContext(ctx).Raw(rankedTeamsCTE+`
			SELECT r.rank, t.id AS team_id, t.name, t.slug, COALESCE(t.image_url, '') AS image_url, r.member_count, r.total_points,
				ROUND(r.total_points::numeric / NULLIF(r.member_count, 0), 2)::float8 AS avg_points_per_member
			FROM ranked r
			JOIN teams t ON t.id = r.team_id
			ORDER BY r.total_points DESC, t.slug ASC
			LIMIT ? OFFSET ?
		`, limit, offset).Scan(&entries).Error
		if err != nil {
			return fmt.Errorf("failed to load team leaderboard: %w", err)
		}
		return nil
	})
	return entries, err
}

func (s *LeaderboardService) GetUserStats(ctx context.Context, userID string) (*dto.UserStats, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var stats dto.UserStats
	key := cache.PrefixStats + "user:" + userID
	err := s.cached(ctx, key, &stats, func() error {
		return s.userStats(s.db.WithContext(ctx), userID, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *LeaderboardService) GetGlobalStats(ctx context.Context) (*dto.GlobalStats, error) {
	var stats dto.GlobalStats
	key := cache.PrefixStats + "global"
	err := s.cached(ctx, key, &stats, func() error {
		return s.globalStats(s.db.WithContext(ctx), &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetDashboard loads the four dashboard sections concurrently.
func (s *LeaderboardService) GetDashboard(ctx context.Context, userID string) (*dto.Dashboard, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var dashboard dto.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.GetUserStats(gctx, userID)
		if err != nil {
			return err
		}
		dashboard.User = *stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.GetGlobalStats(gctx)
		if err != nil {
			return err
		}
		dashboard.Global = *stats
		return nil
	})
	g.Go(func() error {
		recent, err := recentResponses(s.db.WithContext(gctx), userID, 5, 0)
		dashboard.RecentResponses = recent
		return err
	})
	g.Go(func() error {
		top, err := s.GetIndividualLeaderboard(gctx, topPerformers, 0)
		dashboard.TopPerformers = top
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *LeaderboardService) individual(db *gorm.DB, limit, offset int, dest *[]dto.LeaderboardEntry) error {
	err := db.Raw(rankedUsersCTE+`
		SELECT r.rank, r.user_id, COALESCE(p.display_name, r.user_id) AS display_name,
			COALESCE(p.image_url, '') AS image_url, r.total_points, r.riddles_solved
		FROM ranked r
		LEFT JOIN profiles p ON p.user_id = r.user_id
		ORDER BY r.total_points DESC, r.user_id ASC
		LIMIT ? OFFSET ?
	`, limit, offset).Scan(dest).Error
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return nil
}

func (s *LeaderboardService) userStats(db *gorm.DB, userID string, stats *dto.UserStats) error {
	var totals struct {
		TotalPoints      int64
		TotalResponses   int64
		CorrectResponses int64
	}
	err := db.Raw(`
		SELECT COALESCE(SUM(points_earned), 0) AS total_points,
			COUNT(*) AS total_responses,
			COUNT(*) FILTER (WHERE is_correct) AS correct_responses
		FROM riddle_responses
		WHERE user_id = ?
	`, userID).Scan(&totals).Error
	if err != nil {
		return fmt.Errorf("failed to load user totals: %w", err)
	}

	var ranks []int64
	if err := db.Raw(rankedUsersCTE+` SELECT rank FROM ranked WHERE user_id = ?`, userID).Scan(&ranks).Error; err != nil {
		return fmt.Errorf("failed to load user rank: %w", err)
	}

	byCategory, err := breakdown(db, userID, "category")
	if err != nil {
		return err
	}
	byDifficulty, err := breakdown(db, userID, "difficulty")
	if err != nil {
		return err
	}
	days, err := correctDays(db, userID)
	if err != nil {
		return err
	}
	current, longest := ComputeStreaks(days, s.now())

	*stats = dto.UserStats{
		UserID:           userID,
		TotalPoints:      totals.TotalPoints,
		RiddlesSolved:    totals.CorrectResponses,
		TotalResponses:   totals.TotalResponses,
		CorrectResponses: totals.CorrectResponses,
		AccuracyRate:     AccuracyPercent(totals.CorrectResponses, totals.TotalResponses),
		CurrentStreak:    current,
		LongestStreak:    longest,
		ByCategory:       byCategory,
		ByDifficulty:     byDifficulty,
	}
	if len(ranks) > 0 {
		stats.Rank = &ranks[0]
	}
	return nil
}

func (s *LeaderboardService) globalStats(db *gorm.DB, stats *dto.GlobalStats) error {
	now := s.now()
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Profile{}, &stats.TotalUsers},
		{&models.Team{}, &stats.TotalTeams},
		{&models.Riddle{}, &stats.TotalRiddles},
		{&models.RiddleResponse{}, &stats.TotalResponses},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return fmt.Errorf("failed to count: %w", err)
		}
	}
	err := db.Model(&models.Riddle{}).
		Where("status IN ?", []models.RiddleStatus{models.RiddleApproved, models.RiddleScheduled, models.RiddleActive}).
		Where("available_from <= ? AND available_until >= ?", now, now).
		Count(&stats.ActiveRiddles).Error
	if err != nil {
		return fmt.Errorf("failed to count active riddles: %w", err)
	}

	err = db.Raw(`
		SELECT COALESCE(ROUND(100.0 * COUNT(*) FILTER (WHERE is_correct) / NULLIF(COUNT(*), 0), 2), 0)::float8
		FROM riddle_responses
	`).Scan(&stats.AverageAccuracy).Error
	if err != nil {
		return fmt.Errorf("failed to load accuracy: %w", err)
	}

	if stats.MostPopularCategory, err = mostResponded(db, "category"); err != nil {
		return err
	}
	if stats.MostPopularDifficulty, err = mostResponded(db, "difficulty"); err != nil {
		return err
	}
	return nil
}

// cached serves dest from the cache or fills it with load and stores it.
// Cache failures degrade to a database read.
func (s *LeaderboardService) cached(ctx context.Context, key string, dest interface{}, load func() error) error {
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		slog.Warn("cache read failed", "key", key, "error", err)
	}
	if hit {
		return nil
	}
	if err := load(); err != nil {
		return err
	}
	if err := s.cache.SetJSON(ctx, key, dest); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}

// breakdown groups a user's responses by a riddle column. column is always a
// constant from this package.
func breakdown(db *gorm.DB, userID, column string) ([]dto.AccuracyBreakdown, error) {
	rows := make([]dto.AccuracyBreakdown, 0)
	err := db.Raw(`
		SELECT r.`+column+` AS key, COUNT(*) AS total, COUNT(*) FILTER (WHERE rr.is_correct) AS correct
		FROM riddle_responses rr
		JOIN riddles r ON r.id = rr.riddle_id
		WHERE rr.user_id = ?
		GROUP BY r.`+column+`
		ORDER BY r.`+column+`
	`, userID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s breakdown: %w", column, err)
	}
	for i := range rows {
		rows[i].Accuracy = AccuracyPercent(rows[i].Correct, rows[i].Total)
	}
	return rows, nil
}

// mostResponded returns the riddle column value with the most responses,
// ties broken alphabetically.
func mostResponded(db *gorm.DB, column string) (string, error) {
	var values []string
	err := db.Raw(`
		SELECT r.` + column + `
		FROM riddle_responses rr
		JOIN riddles r ON r.id = rr.riddle_id
		GROUP BY r.` + column + `
		ORDER BY COUNT(*) DESC, r.` + column + ` ASC
		LIMIT 1
	`).Scan(&values).Error
	if err != nil {
		return "", fmt.Errorf("failed to load most popular %s: %w", column, err)
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

// AccuracyPercent is correct/total as a rounded whole percentage.
func AccuracyPercent(correct, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}
