package services

import (
	"context"

	"quillpress/internal/models"

	"gorm.io/gorm"
)

// ViewerState is the caller's own reactions and flags over a set of comments.
// It is computed per request and never cached.
type ViewerState struct {
	reactions map[uint]bool
	flagged   map[uint]bool
}

// Reaction returns "like", "dislike" or "" when the viewer has not reacted.
func (v *ViewerState) Reaction(commentID uint) string {
	if v == nil {
		return ""
	}
	isLike, ok := v.reactions[commentID]
	switch {
	case !ok:
		return ""
	case isLike:
		return "like"
	default:
		return "dislike"
	}
}

func (v *ViewerState) HasFlagged(commentID uint) bool {
	return v != nil && v.flagged[commentID]
}

type ViewerService struct {
	db *gorm.DB
}

func NewViewerService(db *gorm.DB) *ViewerService {
	return &ViewerService{db: db}
}

// State loads userID's reactions and flags for commentIDs in two queries.
// Anonymous viewers (userID 0) get an empty state.
func (s *ViewerService) State(ctx context.Context, userID uint, commentIDs []uint) (*ViewerState, error) {
	state := &ViewerState{reactions: map[uint]bool{}, flagged: map[uint]bool{}}
	if userID == 0 || len(commentIDs) == 0 {
		return state, nil
	}

	db := s.db.WithContext(ctx)
	var reactions []models.CommentReaction
	if err := db.Select("comment_id", "is_like").
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Find(&reactions).Error; err != nil {
		return nil, internalError("load viewer reactions", err)
	}
	for _, r := range reactions {
		state.reactions[r.CommentID] = r.IsLike
	}

	var flagged []uint
	if err := db.Model(&models.CommentFlag{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &flagged).Error; err != nil {
		return nil, internalError("load viewer flags", err)
	}
	for _, id := range flagged {
		state.flagged[id] = true
	}
	return state, nil
}
