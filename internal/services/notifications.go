package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quillpress/internal/models"

	"gorm.io/gorm"
)

const notificationListLimit = 50

// NotificationService stores in-app notifications. The notify methods are
// best effort: a failure is logged and never surfaces to the triggering request.
type NotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotificationService(db *gorm.DB, now func() time.Time) *NotificationService {
	if now == nil {
		now = time.Now
	}
	return &NotificationService{db: db, now: now}
}

// ReplyPosted tells the registered author of parent that reply answered them.
func (s *NotificationService) ReplyPosted(ctx context.Context, parent, reply *models.Comment) {
	if s == nil || parent.UserID == nil {
		return
	}
	if reply.UserID != nil && *reply.UserID == *parent.UserID {
		return
	}
	s.create(ctx, models.Notification{
		UserID:    *parent.UserID,
		ActorID:   reply.UserID,
		CommentID: &reply.ID,
		Type:      models.NotificationTypeReplyComment,
		Reason:    excerpt(reply.Content),
	})
}

// CommentFlagged fans a new flag out to every admin.
func (s *NotificationService) CommentFlagged(ctx context.Context, flag *models.CommentFlag) {
	if s == nil {
		return
	}
	var admins []models.User
	if err := s.db.WithContext(ctx).Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err != nil {
		slog.Error("Failed to load admins for flag notification", "flag_id", flag.ID, "error", err)
		return
	}
	reason := string(flag.Reason)
	if flag.Description != "" {
		reason = fmt.Sprintf("%s: %s", flag.Reason, excerpt(flag.Description))
	}
	for _, admin := range admins {
		if admin.ID == flag.UserID {
			continue
		}
		s.create(ctx, models.Notification{
			UserID:    admin.ID,
			ActorID:   &flag.UserID,
			CommentID: &flag.CommentID,
			Type:      models.NotificationTypeCommentFlagged,
			Reason:    reason,
		})
	}
}

// Moderated tells a registered author that an admin changed their comment's status.
func (s *NotificationService) Moderated(ctx context.Context, comment *models.Comment, admin *models.User) {
	if s == nil || comment.UserID == nil || comment.OwnedBy(admin.ID) {
		return
	}
	s.create(ctx, models.Notification{
		UserID:    *comment.UserID,
		ActorID:   &admin.ID,
		CommentID: &comment.ID,
		Type:      models.NotificationTypeCommentModerated,
		Reason:    string(comment.Status),
	})
}

func (s *NotificationService) create(ctx context.Context, n models.Notification) {
	n.CreatedAt = s.now()
	if err := s.db.WithContext(ctx).Omit("User", "Actor").Create(&n).Error; err != nil {
		slog.Error("Failed to create notification", "type", n.Type, "user_id", n.UserID, "error", err)
	}
}

// List returns the newest notifications of userID.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(notificationListLimit).
		Find(&notifications).Error
	if err != nil {
		return nil, internalError("list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, internalError("count notifications", err)
	}
	return count, nil
}

// MarkRead marks one of userID's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("Notification not found")
	}
	if err != nil {
		return internalError("load notification", err)
	}
	if err := s.db.WithContext(ctx).Model(&n).UpdateColumn("is_read", true).Error; err != nil {
		return internalError("mark notification read", err)
	}
	return nil
}

// Delete removes one of userID's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return internalError("delete notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumn("is_read", true).Error
	if err != nil {
		return internalError("mark notifications read", err)
	}
	return nil
}

func excerpt(s string) string {
	const limit = 120
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
