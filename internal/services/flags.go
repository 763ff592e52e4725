package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"quillpress/internal/metrics"
	"quillpress/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FlagService struct {
	db       *gorm.DB
	metrics  *metrics.Metrics
	notifier *NotificationService
	now      func() time.Time
}

func NewFlagService(db *gorm.DB, opts Options) *FlagService {
	opts = opts.withDefaults()
	return &FlagService{db: db, metrics: opts.Metrics, notifier: opts.Notifier, now: opts.Now}
}

// Flag records userID's report against a comment. A user flags a comment once.
func (s *FlagService) Flag(ctx context.Context, commentID, userID uint, reason models.FlagReason, description string) (*models.CommentFlag, error) {
	if !reason.Valid() {
		return nil, ValidationError("Reason must be one of spam, harassment, hate_speech, inappropriate, misinformation, other")
	}

	flag := models.CommentFlag{
		CommentID:   commentID,
		UserID:      userID,
		Reason:      reason,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := commentExists(tx, commentID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.CommentFlag{}).
			Where("comment_id = ? AND user_id = ?", commentID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return DuplicateError("You have already flagged this comment")
		}

		if err := tx.Omit(clause.Associations).Create(&flag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return DuplicateError("You have already flagged this comment")
			}
			return err
		}
		return recountFlags(tx, commentID)
	})
	if err != nil {
		return nil, passThrough("flag comment", err)
	}
	s.metrics.Flag("flagged")

	created, err := s.get(ctx, flag.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.CommentFlagged(ctx, created)
	return created, nil
}

// Unflag withdraws userID's flag on a comment.
func (s *FlagService) Unflag(ctx context.Context, commentID, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := commentExists(tx, commentID); err != nil {
			return err
		}

		var flag models.CommentFlag
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&flag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("You have not flagged this comment")
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&flag).Error; err != nil {
			return err
		}
		return recountFlags(tx, commentID)
	})
	if err != nil {
		return passThrough("unflag comment", err)
	}
	s.metrics.Flag("unflagged")
	return nil
}

// ListUnresolved returns open flags, newest first.
func (s *FlagService) ListUnresolved(ctx context.Context) ([]models.CommentFlag, error) {
	var flags []models.CommentFlag
	err := s.db.WithContext(ctx).Preload("User").
		Where("is_resolved = ?", false).
		Order("created_at DESC, id DESC").
		Find(&flags).Error
	if err != nil {
		return nil, internalError("list flags", err)
	}
	return flags, nil
}

// Resolve closes a flag on behalf of an admin. Resolving twice keeps the first
// resolution. Resolved flags still count towards the comment's flags_count.
func (s *FlagService) Resolve(ctx context.Context, flagID uint, admin *models.User) (*models.CommentFlag, error) {
	if !admin.IsAdmin() {
		return nil, PermissionError("Only admins can resolve flags")
	}
	flag, err := s.get(ctx, flagID)
	if err != nil {
		return nil, err
	}
	if flag.IsResolved {
		return flag, nil
	}

	err = s.db.WithContext(ctx).Model(&models.CommentFlag{}).Where("id = ?", flagID).Updates(map[string]interface{}{
		"is_resolved":    true,
		"resolved_by_id": admin.ID,
		"resolved_at":    s.now(),
	}).Error
	if err != nil {
		return nil, internalError("resolve flag", err)
	}
	s.metrics.Flag("resolved")
	return s.get(ctx, flagID)
}

func (s *FlagService) get(ctx context.Context, id uint) (*models.CommentFlag, error) {
	var flag models.CommentFlag
	err := s.db.WithContext(ctx).Preload("User").First(&flag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("Flag not found")
	}
	if err != nil {
		return nil, internalError("load flag", err)
	}
	return &flag, nil
}

// recountFlags rewrites flags_count from the ledger inside the caller's transaction.
func recountFlags(tx *gorm.DB, commentID uint) error {
	var count int64
	if err := tx.Model(&models.CommentFlag{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Comment{}).Where("id = ?", commentID).UpdateColumn("flags_count", count).Error
}
