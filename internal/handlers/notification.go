package handlers

import (
	"net/http"
	"time"

	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationView struct {
	ID        uint                    `json:"id"`
	Type      models.NotificationType `json:"type"`
	Actor     *userView               `json:"actor"`
	Comment   *uint                   `json:"comment"`
	Reason    string                  `json:"reason"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

func renderNotifications(ns []models.Notification) []notificationView {
	out := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		v := notificationView{
			ID:        n.ID,
			Type:      n.Type,
			Comment:   n.CommentID,
			Reason:    n.Reason,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if n.Actor != nil {
			v.Actor = &userView{ID: n.Actor.ID, Name: n.Actor.Name}
		}
		out = append(out, v)
	}
	return out
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	notifications, err := h.notifications.List(ctx, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": renderNotifications(notifications),
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	id, ok := paramID(c, "id", "Notification")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.notifications.MarkRead(c.Request.Context(), user.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "Notification")
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.notifications.Delete(c.Request.Context(), user.ID, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.notifications.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
