package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"quillpress/internal/db"
	"quillpress/internal/metrics"
	"quillpress/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	ctx           context.Context
	db            *gorm.DB
	clock         *fakeClock
	metrics       *metrics.Metrics
	articles      *ArticleLookup
	comments      *CommentService
	reactions     *ReactionService
	flags         *FlagService
	viewer        *ViewerService
	notifications *NotificationService
	article       models.Article
	alice         *models.User
	bob           *models.User
	admin         *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	notifications := NewNotificationService(conn, clock.Now)
	opts := Options{
		DefaultStatus:    models.StatusApproved,
		ReactionCooldown: time.Minute,
		Metrics:          m,
		Notifier:         notifications,
		Now:              clock.Now,
	}
	articles, err := NewArticleLookup(conn, 16, time.Minute)
	require.NoError(t, err)

	f := &fixture{
		ctx:           context.Background(),
		db:            conn,
		clock:         clock,
		metrics:       m,
		articles:      articles,
		comments:      NewCommentService(conn, articles, opts),
		reactions:     NewReactionService(conn, opts),
		flags:         NewFlagService(conn, opts),
		viewer:        NewViewerService(conn),
		notifications: notifications,
	}
	f.alice = f.user(t, "alice", models.RoleUser)
	f.bob = f.user(t, "bob", models.RoleUser)
	f.admin = f.user(t, "root", models.RoleAdmin)
	f.article = f.newArticle(t, "hello-world")
	return f
}

func (f *fixture) user(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role, IsActive: true}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) newArticle(t *testing.T, slug string) models.Article {
	t.Helper()
	a := models.Article{Title: slug, Slug: slug}
	require.NoError(t, f.db.Create(&a).Error)
	return a
}

// post creates a comment by u (anonymous when u is nil) one minute after the previous one.
func (f *fixture) post(t *testing.T, u *models.User, parent *models.Comment, content string) *models.Comment {
	t.Helper()
	f.clock.Advance(time.Minute)

	in := CreateCommentInput{ArticleID: f.article.ID, Content: content}
	if u != nil {
		in.Author = models.RegisteredAuthor(u.ID)
	} else {
		in.Author = models.AnonymousAuthor("Guest", "guest@example.com")
	}
	if parent != nil {
		in.ArticleID = 0
		in.ParentID = &parent.ID
	}
	c, err := f.comments.Create(f.ctx, in)
	require.NoError(t, err)
	return c
}

func (f *fixture) reload(t *testing.T, id uint) models.Comment {
	t.Helper()
	var c models.Comment
	require.NoError(t, f.db.First(&c, id).Error)
	return c
}

// requireCountersMatchLedgers checks that the denormalized counters equal the ledger counts.
func (f *fixture) requireCountersMatchLedgers(t *testing.T) {
	t.Helper()
	var comments []models.Comment
	require.NoError(t, f.db.Find(&comments).Error)
	for _, c := range comments {
		var likes, dislikes, flags int64
		f.db.Model(&models.CommentReaction{}).Where("comment_id = ? AND is_like = ?", c.ID, true).Count(&likes)
		f.db.Model(&models.CommentReaction{}).Where("comment_id = ? AND is_like = ?", c.ID, false).Count(&dislikes)
		f.db.Model(&models.CommentFlag{}).Where("comment_id = ?", c.ID).Count(&flags)
		msg := fmt.Sprintf("comment %d", c.ID)
		require.EqualValues(t, likes, c.LikesCount, msg)
		require.EqualValues(t, dislikes, c.DislikesCount, msg)
		require.EqualValues(t, flags, c.FlagsCount, msg)
	}
}
