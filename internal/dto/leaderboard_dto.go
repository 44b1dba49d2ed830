package dto

import "github.com/google/uuid"

type LeaderboardEntry struct {
	Rank          int64  `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	ImageURL      string `json:"image_url,omitempty"`
	TotalPoints   int64  `json:"total_points"`
	RiddlesSolved int64  `json:"riddles_solved"`
}

type TeamLeaderboardEntry struct {
	Rank               int64     `json:"rank"`
	TeamID             uuid.UUID `json:"team_id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	ImageURL           string    `json:"image_url,omitempty"`
	MemberCount        int64     `json:"member_count"`
	TotalPoints        int64     `json:"total_points"`
	AvgPointsPerMember float64   `json:"avg_points_per_member"`
}

type AccuracyBreakdown struct {
	Key      string `json:"key"`
	Total    int64  `json:"total"`
	Correct  int64  `json:"correct"`
	Accuracy int    `json:"accuracy"`
}

type UserStats struct {
	UserID           string              `json:"user_id"`
	TotalPoints      int64               `json:"total_points"`
	Rank             *int64              `json:"rank"`
	RiddlesSolved    int64               `json:"riddles_solved"`
	TotalResponses   int64               `json:"total_responses"`
	CorrectResponses int64               `json:"correct_responses"`
	AccuracyRate     int                 `json:"accuracy_rate"`
	CurrentStreak    int                 `json:"current_streak"`
	LongestStreak    int                 `json:"longest_streak"`
	ByCategory       []AccuracyBreakdown `json:"by_category"`
	ByDifficulty     []AccuracyBreakdown `json:"by_difficulty"`
}

type GlobalStats struct {
	TotalUsers            int64   `json:"total_users"`
	TotalTeams            int64   `json:"total_teams"`
	TotalRiddles          int64   `json:"total_riddles"`
	TotalResponses        int64   `json:"total_responses"`
	ActiveRiddles         int64   `json:"active_riddles"`
	AverageAccuracy       float64 `json:"average_accuracy"`
	MostPopularCategory   string  `json:"most_popular_category"`
	MostPopularDifficulty string  `json:"most_popular_difficulty"`
}

type Dashboard struct {
	User            UserStats          `json:"user"`
	Global          GlobalStats        `json:"global"`
	RecentResponses []RecentResponse   `json:"recent_responses"`
	TopPerformers   []LeaderboardEntry `json:"top_performers"`
}
