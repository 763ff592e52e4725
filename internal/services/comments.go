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

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
)

// Options carries the settings shared by the comment, reaction and flag services.
type Options struct {
	DefaultStatus    models.CommentStatus
	ReactionCooldown time.Duration
	RecentLimit      int
	MaxRecentLimit   int
	Metrics          *metrics.Metrics
	Notifier         *NotificationService
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if !o.DefaultStatus.Valid() {
		o.DefaultStatus = models.StatusApproved
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = DefaultRecentLimit
	}
	if o.MaxRecentLimit <= 0 {
		o.MaxRecentLimit = MaxRecentLimit
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type CommentService struct {
	db       *gorm.DB
	articles ArticleResolver
	opts     Options
}

func NewCommentService(db *gorm.DB, articles ArticleResolver, opts Options) *CommentService {
	return &CommentService{db: db, articles: articles, opts: opts.withDefaults()}
}

type CreateCommentInput struct {
	ArticleID uint
	ParentID  *uint
	Author    models.Author
	Content   string
}

func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if !in.Author.Complete() {
		return nil, ValidationError("Name and email are required for anonymous comments")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ValidationError("Content is required")
	}

	db := s.db.WithContext(ctx)
	articleID := in.ArticleID
	var parent *models.Comment
	if in.ParentID != nil {
		p, err := s.load(ctx, *in.ParentID, "Parent comment not found")
		if err != nil {
			return nil, err
		}
		if articleID != 0 && articleID != p.ArticleID {
			return nil, ValidationError("Reply must belong to the same article as its parent")
		}
		articleID = p.ArticleID
		parent = p
	} else {
		if articleID == 0 {
			return nil, ValidationError("Article is required")
		}
		ok, err := s.articles.ArticleExists(ctx, articleID)
		if err != nil {
			return nil, internalError("resolve article", err)
		}
		if !ok {
			return nil, NotFoundError("Article not found")
		}
	}

	now := s.opts.Now()
	comment := models.Comment{
		ArticleID: articleID,
		ParentID:  in.ParentID,
		Content:   content,
		Status:    s.opts.DefaultStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	authorKind := "anonymous"
	if in.Author.IsRegistered() {
		authorKind = "user"
		comment.UserID = in.Author.UserID
	} else {
		comment.UserName = in.Author.Name
		comment.UserEmail = in.Author.Email
	}

	if err := db.Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, internalError("create comment", err)
	}
	s.opts.Metrics.CommentCreated(authorKind, string(comment.Status))

	if parent != nil {
		s.opts.Notifier.ReplyPosted(ctx, parent, &comment)
	}
	return s.Get(ctx, comment.ID)
}

// Update replaces the content of a comment. Only the registered author may edit.
func (s *CommentService) Update(ctx context.Context, id uint, content string, requester *models.User) (*models.Comment, error) {
	comment, err := s.load(ctx, id, "Comment not found")
	if err != nil {
		return nil, err
	}
	if requester == nil || !comment.OwnedBy(requester.ID) {
		return nil, PermissionError("You can only edit your own comments")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ValidationError("Content is required")
	}

	updates := map[string]interface{}{
		"content":    content,
		"updated_at": s.opts.Now(),
	}
	if content != comment.Content {
		updates["is_edited"] = true
	}
	if err := s.db.WithContext(ctx).Model(comment).Updates(updates).Error; err != nil {
		return nil, internalError("update comment", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a comment with every reply below it and all reactions and
// flags attached to any of them.
func (s *CommentService) Delete(ctx context.Context, id uint, requester *models.User) error {
	comment, err := s.load(ctx, id, "Comment not found")
	if err != nil {
		return err
	}
	if requester == nil || !(comment.OwnedBy(requester.ID) || requester.IsAdmin()) {
		return PermissionError("You can only delete your own comments")
	}

	var removed int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := subtreeIDs(tx, comment)
		if err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentFlag{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Notification{}).Where("comment_id IN ?", ids).
			UpdateColumn("comment_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		removed = len(ids)
		return nil
	})
	if err != nil {
		return internalError("delete comment", err)
	}
	s.opts.Metrics.CommentsRemoved(removed)
	return nil
}

// subtreeIDs returns root and all its descendants, root first.
func subtreeIDs(tx *gorm.DB, root *models.Comment) ([]uint, error) {
	var rows []struct {
		ID       uint
		ParentID *uint
	}
	err := tx.Model(&models.Comment{}).
		Select("id", "parent_id").
		Where("article_id = ?", root.ArticleID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	children := make(map[uint][]uint, len(rows))
	for _, r := range rows {
		if r.ParentID != nil {
			children[*r.ParentID] = append(children[*r.ParentID], r.ID)
		}
	}

	ids := []uint{root.ID}
	seen := map[uint]bool{root.ID: true}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if !seen[child] {
				seen[child] = true
				ids = append(ids, child)
			}
		}
	}
	return ids, nil
}

// Get loads a single comment with its registered author.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	return loadWithAuthor(s.db.WithContext(ctx), id)
}

func (s *CommentService) load(ctx context.Context, id uint, missing string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("%s", missing)
	}
	if err != nil {
		return nil, internalError("load comment", err)
	}
	return &comment, nil
}

func (s *CommentService) articleComments(ctx context.Context, articleID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("article_id = ?", articleID).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, internalError("load article comments", err)
	}
	return comments, nil
}

// ListTopLevel returns the threads of an article, newest first at every level.
func (s *CommentService) ListTopLevel(ctx context.Context, articleID uint, keep Keep) ([]*Thread, error) {
	ok, err := s.articles.ArticleExists(ctx, articleID)
	if err != nil {
		return nil, internalError("resolve article", err)
	}
	if !ok {
		return nil, NotFoundError("Article not found")
	}
	comments, err := s.articleComments(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return BuildThreads(comments, keep), nil
}

// Thread returns a comment with the replies below it that keep accepts.
func (s *CommentService) Thread(ctx context.Context, id uint, keep Keep) (*Thread, error) {
	root, err := s.load(ctx, id, "Comment not found")
	if err != nil {
		return nil, err
	}
	comments, err := s.articleComments(ctx, root.ArticleID)
	if err != nil {
		return nil, err
	}
	thread := BuildThread(id, comments, keep)
	if thread == nil {
		return nil, NotFoundError("Comment not found")
	}
	return thread, nil
}

// SetStatus moves a comment between pending, approved and rejected.
func (s *CommentService) SetStatus(ctx context.Context, id uint, status models.CommentStatus, requester *models.User) (*models.Comment, error) {
	if !requester.IsAdmin() {
		return nil, PermissionError("Only admins can moderate comments")
	}
	if !status.Valid() {
		return nil, ValidationError("Status must be one of pending, approved, rejected")
	}
	comment, err := s.load(ctx, id, "Comment not found")
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(comment).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": s.opts.Now(),
	}).Error
	if err != nil {
		return nil, internalError("update comment status", err)
	}
	s.opts.Metrics.Moderated(string(status))

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.opts.Notifier.Moderated(ctx, updated, requester)
	return updated, nil
}

func (s *CommentService) ListPending(ctx context.Context) ([]models.Comment, error) {
	return s.list(ctx, "list pending comments", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.StatusPending).Order("created_at DESC, id DESC")
	})
}

// ListRecentApproved clamps limit to the configured bounds.
func (s *CommentService) ListRecentApproved(ctx context.Context, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = s.opts.RecentLimit
	}
	if limit > s.opts.MaxRecentLimit {
		limit = s.opts.MaxRecentLimit
	}
	return s.list(ctx, "list recent comments", func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.StatusApproved).Order("created_at DESC, id DESC").Limit(limit)
	})
}

// ListFlagged returns approved comments that carry at least one flag, most flagged first.
func (s *CommentService) ListFlagged(ctx context.Context) ([]models.Comment, error) {
	return s.list(ctx, "list flagged comments", func(q *gorm.DB) *gorm.DB {
		return q.Where("flags_count > ? AND status = ?", 0, models.StatusApproved).
			Order("flags_count DESC, created_at DESC, id DESC")
	})
}

func (s *CommentService) list(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).Preload("User").Scopes(scope).Find(&comments).Error; err != nil {
		return nil, internalError(op, err)
	}
	return comments, nil
}
