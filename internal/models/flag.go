package models

import (
	"time"
)

type FlagReason string

const (
	FlagSpam           FlagReason = "spam"
	FlagHarassment     FlagReason = "harassment"
	FlagHateSpeech     FlagReason = "hate_speech"
	FlagInappropriate  FlagReason = "inappropriate"
	FlagMisinformation FlagReason = "misinformation"
	FlagOther          FlagReason = "other"
)

var FlagReasons = []FlagReason{
	FlagSpam, FlagHarassment, FlagHateSpeech, FlagInappropriate, FlagMisinformation, FlagOther,
}

func (r FlagReason) Valid() bool {
	for _, reason := range FlagReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// CommentFlag is a user report against a comment, one per user per comment.
type CommentFlag struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CommentID    uint       `gorm:"not null;index;uniqueIndex:idx_comment_user_flag" json:"comment"`
	Comment      Comment    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID       uint       `gorm:"not null;index;uniqueIndex:idx_comment_user_flag" json:"user_id"` // Reporter
	User         User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Reason       FlagReason `gorm:"size:20;not null" json:"reason"`
	Description  string     `gorm:"type:text" json:"description"`
	IsResolved   bool       `gorm:"not null;default:false;index" json:"is_resolved"`
	ResolvedByID *uint      `gorm:"index" json:"resolved_by"`
	ResolvedBy   *User      `gorm:"foreignKey:ResolvedByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}
