package handlers

import (
	"context"
	"time"

	"quillpress/internal/models"
	"quillpress/internal/services"
	"quillpress/internal/utils"
)

type userView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type commentView struct {
	ID             uint                 `json:"id"`
	Article        uint                 `json:"article"`
	Parent         *uint                `json:"parent"`
	User           *userView            `json:"user"`
	UserName       string               `json:"user_name,omitempty"`
	UserEmail      string               `json:"user_email,omitempty"`
	AuthorName     string               `json:"author_name"`
	Content        string               `json:"content"`
	ContentHTML    string               `json:"content_html"`
	Status         models.CommentStatus `json:"status"`
	LikesCount     int                  `json:"likes_count"`
	DislikesCount  int                  `json:"dislikes_count"`
	FlagsCount     int                  `json:"flags_count"`
	IsEdited       bool                 `json:"is_edited"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Replies        []commentView        `json:"replies"`
	UserLikeStatus *string              `json:"user_like_status"`
	UserHasFlagged bool                 `json:"user_has_flagged"`
}

type flagView struct {
	ID          uint              `json:"id"`
	Comment     uint              `json:"comment"`
	User        userView          `json:"user"`
	Reason      models.FlagReason `json:"reason"`
	Description string            `json:"description"`
	IsResolved  bool              `json:"is_resolved"`
	ResolvedBy  *uint             `json:"resolved_by"`
	ResolvedAt  *time.Time        `json:"resolved_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// serializer renders comments for one caller: their own reaction and flag
// state, and anonymous e-mail addresses only for admins.
type serializer struct {
	viewer  *services.ViewerState
	isAdmin bool
}

// newSerializer loads the caller's state for every comment in threads.
func newSerializer(ctx context.Context, viewer *services.ViewerService, user *models.User, threads ...*services.Thread) (*serializer, error) {
	s := &serializer{isAdmin: user.IsAdmin()}
	if user == nil {
		return s, nil
	}
	var ids []uint
	for _, t := range threads {
		t.Walk(func(c *models.Comment) { ids = append(ids, c.ID) })
	}
	state, err := viewer.State(ctx, user.ID, ids)
	if err != nil {
		return nil, err
	}
	s.viewer = state
	return s, nil
}

func (s *serializer) thread(t *services.Thread) commentView {
	v := s.comment(t.Comment)
	for _, r := range t.Replies {
		v.Replies = append(v.Replies, s.thread(r))
	}
	return v
}

func (s *serializer) threads(ts []*services.Thread) []commentView {
	out := make([]commentView, 0, len(ts))
	for _, t := range ts {
		out = append(out, s.thread(t))
	}
	return out
}

func (s *serializer) comment(c *models.Comment) commentView {
	v := commentView{
		ID:             c.ID,
		Article:        c.ArticleID,
		Parent:         c.ParentID,
		Content:        c.Content,
		ContentHTML:    string(utils.RenderMarkdown(c.Content)),
		Status:         c.Status,
		LikesCount:     c.LikesCount,
		DislikesCount:  c.DislikesCount,
		FlagsCount:     c.FlagsCount,
		IsEdited:       c.IsEdited,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Replies:        []commentView{},
		UserHasFlagged: s.viewer.HasFlagged(c.ID),
	}
	if reaction := s.viewer.Reaction(c.ID); reaction != "" {
		v.UserLikeStatus = &reaction
	}

	if c.UserID != nil {
		v.User = &userView{ID: *c.UserID}
		if c.User != nil {
			v.User.Name = c.User.Name
			v.AuthorName = c.User.Name
		}
	} else {
		v.UserName = c.UserName
		v.AuthorName = c.UserName
		if s.isAdmin {
			v.UserEmail = c.UserEmail
		}
	}
	return v
}

func (s *serializer) comments(cs []models.Comment) []commentView {
	out := make([]commentView, 0, len(cs))
	for i := range cs {
		out = append(out, s.comment(&cs[i]))
	}
	return out
}

func renderFlag(f *models.CommentFlag) flagView {
	return flagView{
		ID:          f.ID,
		Comment:     f.CommentID,
		User:        userView{ID: f.UserID, Name: f.User.Name},
		Reason:      f.Reason,
		Description: f.Description,
		IsResolved:  f.IsResolved,
		ResolvedBy:  f.ResolvedByID,
		ResolvedAt:  f.ResolvedAt,
		CreatedAt:   f.CreatedAt,
	}
}

func renderFlags(flags []models.CommentFlag) []flagView {
	out := make([]flagView, 0, len(flags))
	for i := range flags {
		out = append(out, renderFlag(&flags[i]))
	}
	return out
}

// asThreads wraps flat comments so their viewer state loads in one pass.
func asThreads(cs []models.Comment) []*services.Thread {
	out := make([]*services.Thread, len(cs))
	for i := range cs {
		out[i] = &services.Thread{Comment: &cs[i]}
	}
	return out
}
