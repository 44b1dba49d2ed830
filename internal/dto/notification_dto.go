package dto

import "github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"

type UpdatePreferenceRequest struct {
	Type         models.NotificationType `json:"type"`
	Event        string                  `json:"event"`
	Enabled      *bool                   `json:"enabled"`
	EmailEnabled *bool                   `json:"email_enabled"`
	PushEnabled  *bool                   `json:"push_enabled"`
}

type AnnouncementRequest struct {
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	UserIDs  []string               `json:"user_ids"`
	Metadata map[string]interface{} `json:"metadata"`
}

type AnnouncementResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}
