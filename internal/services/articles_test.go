package services

import (
	"testing"

	"quillpress/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleLookupCachesHits(t *testing.T) {
	f := newFixture(t)

	ok, err := f.articles.ArticleExists(f.ctx, f.article.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// A cached hit survives the row going away until it is forgotten.
	require.NoError(t, f.db.Delete(&models.Article{}, f.article.ID).Error)
	ok, err = f.articles.ArticleExists(f.ctx, f.article.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	f.articles.Forget(f.article.ID)
	ok, err = f.articles.ArticleExists(f.ctx, f.article.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.articles.ArticleExists(f.ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
