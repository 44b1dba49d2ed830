package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/dto"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/identity"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	limit, offset := page(c)
	list, err := h.notifications.ListNotifications(c.UserContext(), userID, c.QueryBool("unread", false), limit, offset)
	if err != nil {
		return respondError(c, "notification.list", err)
	}
	return respond(c, fiber.StatusOK, "Notifications loaded", list)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	count, err := h.notifications.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "notification.unread_count", err)
	}
	return respond(c, fiber.StatusOK, "Unread count loaded", fiber.Map{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	id, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.notifications.MarkAsRead(c.UserContext(), userID, id); err != nil {
		return respondError(c, "notification.mark_read", err)
	}
	return respond(c, fiber.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	updated, err := h.notifications.MarkAllAsRead(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "notification.mark_all_read", err)
	}
	return respond(c, fiber.StatusOK, "Notifications marked as read", fiber.Map{"updated": updated})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	id, ok, err := paramUUID(c, "id")
	if !ok {
		return err
	}
	if err := h.notifications.DeleteNotification(c.UserContext(), userID, id); err != nil {
		return respondError(c, "notification.delete", err)
	}
	return respond(c, fiber.StatusOK, "Notification deleted", nil)
}

func (h *NotificationHandler) DeleteRead(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	deleted, err := h.notifications.DeleteAllRead(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "notification.delete_read", err)
	}
	return respond(c, fiber.StatusOK, "Read notifications deleted", fiber.Map{"deleted": deleted})
}

func (h *NotificationHandler) GetPreferences(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	prefs, err := h.notifications.GetPreferences(c.UserContext(), userID)
	if err != nil {
		return respondError(c, "notification.preferences", err)
	}
	return respond(c, fiber.StatusOK, "Preferences loaded", prefs)
}

func (h *NotificationHandler) UpdatePreference(c *fiber.Ctx) error {
	userID, ok, err := currentUser(c)
	if !ok {
		return err
	}
	var req dto.UpdatePreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	pref, err := h.notifications.UpdatePreference(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, "notification.update_preference", err)
	}
	return respond(c, fiber.StatusOK, "Preference saved", pref)
}

// Announce fans a system announcement out to the listed users, or to every
// profile when none are listed.
func (h *NotificationHandler) Announce(c *fiber.Ctx) error {
	var req dto.AnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	result, err := h.notifications.CreateSystemAnnouncement(c.UserContext(), &req)
	if err != nil {
		return respondError(c, "notification.announce", err)
	}
	adminID, _ := identity.UserID(c)
	slog.Info("announcement sent",
		"admin_id", adminID,
		"via_token", identity.IsAdminToken(c),
		"sent", result.Sent, "failed", result.Failed, "skipped", result.Skipped,
	)
	return respond(c, fiber.StatusOK, "Announcement sent", result)
}
