package services

import (
	"context"
	"errors"
	"time"

	"quillpress/internal/metrics"
	"quillpress/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultReactionCooldown = 60 * time.Second

type ReactionAction string

const (
	ReactionCreated ReactionAction = "created"
	ReactionUpdated ReactionAction = "updated"
	ReactionRemoved ReactionAction = "removed"
)

type ReactionResult struct {
	Action  ReactionAction
	Comment *models.Comment
}

type ReactionService struct {
	db       *gorm.DB
	cooldown time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewReactionService(db *gorm.DB, opts Options) *ReactionService {
	opts = opts.withDefaults()
	cooldown := opts.ReactionCooldown
	if cooldown == 0 {
		cooldown = DefaultReactionCooldown
	}
	return &ReactionService{db: db, cooldown: cooldown, metrics: opts.Metrics, now: opts.Now}
}

// React toggles userID's like or dislike on a comment. Repeating the same
// reaction removes it; switching sides is refused until the cooldown has passed
// since the last switch.
func (s *ReactionService) React(ctx context.Context, commentID, userID uint, isLike bool) (*ReactionResult, error) {
	var action ReactionAction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := commentExists(tx, commentID); err != nil {
			return err
		}

		now := s.now()
		var existing models.CommentReaction
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := models.CommentReaction{
				CommentID: commentID,
				UserID:    userID,
				IsLike:    isLike,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Omit(clause.Associations).Create(&reaction).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return DuplicateError("Reaction already recorded")
				}
				return err
			}
			action = ReactionCreated
		case err != nil:
			return err
		case existing.IsLike == isLike:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			action = ReactionRemoved
		default:
			if now.Sub(existing.UpdatedAt) < s.cooldown {
				return RateLimitError("Please wait before changing your reaction again")
			}
			err := tx.Model(&existing).Updates(map[string]interface{}{
				"is_like":    isLike,
				"updated_at": now,
			}).Error
			if err != nil {
				return err
			}
			action = ReactionUpdated
		}

		return recountReactions(tx, commentID)
	})
	if err != nil {
		if KindOf(err) == KindRateLimited {
			s.metrics.ReactionCooldown()
		}
		return nil, passThrough("react to comment", err)
	}
	s.metrics.Reaction(string(action))

	comment, err := loadWithAuthor(s.db.WithContext(ctx), commentID)
	if err != nil {
		return nil, err
	}
	return &ReactionResult{Action: action, Comment: comment}, nil
}

// recountReactions rewrites the comment's like and dislike counters from the
// ledger. It must run in the transaction that changed the ledger.
func recountReactions(tx *gorm.DB, commentID uint) error {
	var likes, dislikes int64
	if err := tx.Model(&models.CommentReaction{}).
		Where("comment_id = ? AND is_like = ?", commentID, true).Count(&likes).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.CommentReaction{}).
		Where("comment_id = ? AND is_like = ?", commentID, false).Count(&dislikes).Error; err != nil {
		return err
	}
	return tx.Model(&models.Comment{}).Where("id = ?", commentID).UpdateColumns(map[string]interface{}{
		"likes_count":    likes,
		"dislikes_count": dislikes,
	}).Error
}

func commentExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return NotFoundError("Comment not found")
	}
	return nil
}

func loadWithAuthor(db *gorm.DB, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := db.Preload("User").First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("Comment not found")
	}
	if err != nil {
		return nil, internalError("load comment", err)
	}
	return &comment, nil
}
