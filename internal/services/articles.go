package services

import (
	"context"
	"errors"
	"time"

	"quillpress/internal/models"
	"quillpress/internal/utils"

	"gorm.io/gorm"
)

// ArticleResolver answers whether an article exists. Articles are owned by
// another service; comments only need to know they can attach to one.
type ArticleResolver interface {
	ArticleExists(ctx context.Context, id uint) (bool, error)
}

// ArticleLookup resolves articles from the shared articles table and keeps
// positive answers in a TTL cache. Misses are not cached so a freshly
// published article becomes commentable immediately.
type ArticleLookup struct {
	db    *gorm.DB
	cache *utils.TTLCache[uint, bool]
}

func NewArticleLookup(db *gorm.DB, size int, ttl time.Duration) (*ArticleLookup, error) {
	cache, err := utils.NewTTLCache[uint, bool](size, ttl)
	if err != nil {
		return nil, err
	}
	return &ArticleLookup{db: db, cache: cache}, nil
}

func (a *ArticleLookup) ArticleExists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	if _, ok := a.cache.Get(id); ok {
		return true, nil
	}

	var article models.Article
	err := a.db.WithContext(ctx).Select("id").First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	a.cache.Set(id, true)
	return true, nil
}

// Forget drops a cached answer, e.g. after the article was removed.
func (a *ArticleLookup) Forget(id uint) {
	a.cache.Delete(id)
}
