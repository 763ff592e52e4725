package models

import (
	"strings"
	"time"
)

type CommentStatus string

const (
	StatusPending  CommentStatus = "pending"
	StatusApproved CommentStatus = "approved"
	StatusRejected CommentStatus = "rejected"
)

func (s CommentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Comment struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ArticleID uint     `gorm:"not null;index" json:"article"`
	Article   Article  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    *uint    `gorm:"index" json:"user_id"` // Nullable for anonymous comments
	User      *User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user"`
	UserName  string   `gorm:"size:100" json:"user_name"`
	UserEmail string   `gorm:"size:254" json:"user_email"`
	ParentID  *uint    `gorm:"index" json:"parent"` // Nullable for top-level comments
	Parent    *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content   string   `gorm:"type:text;not null" json:"content"`

	Status        CommentStatus `gorm:"size:10;not null;default:'approved';index" json:"status"`
	LikesCount    int           `gorm:"not null;default:0" json:"likes_count"`
	DislikesCount int           `gorm:"not null;default:0" json:"dislikes_count"`
	FlagsCount    int           `gorm:"not null;default:0;index" json:"flags_count"`
	IsEdited      bool          `gorm:"not null;default:false" json:"is_edited"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is either a registered user or an anonymous name/email pair.
type Author struct {
	UserID *uint
	Name   string
	Email  string
}

func RegisteredAuthor(userID uint) Author {
	return Author{UserID: &userID}
}

func AnonymousAuthor(name, email string) Author {
	return Author{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
}

func (a Author) IsRegistered() bool {
	return a.UserID != nil
}

// Complete reports whether the variant is fully populated.
func (a Author) Complete() bool {
	if a.IsRegistered() {
		return *a.UserID != 0
	}
	return a.Name != "" && a.Email != ""
}

func (c *Comment) Author() Author {
	if c.UserID != nil {
		return Author{UserID: c.UserID}
	}
	return Author{Name: c.UserName, Email: c.UserEmail}
}

// OwnedBy reports whether userID is the registered author of the comment.
// Anonymous comments have no owner.
func (c *Comment) OwnedBy(userID uint) bool {
	return c.UserID != nil && userID != 0 && *c.UserID == userID
}
