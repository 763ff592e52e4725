package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMMENT_DEFAULT_STATUS", "")
	t.Setenv("REACTION_COOLDOWN_SECONDS", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "approved", cfg.CommentDefaultStatus)
	assert.Equal(t, 60*time.Second, cfg.ReactionCooldown)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 10, cfg.RecentLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("COMMENT_DEFAULT_STATUS", "Pending")
	t.Setenv("REACTION_COOLDOWN_SECONDS", "5")
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("RECENT_COMMENTS_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "pending", cfg.CommentDefaultStatus)
	assert.Equal(t, 5*time.Second, cfg.ReactionCooldown)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 10, cfg.RecentLimit, "unparsable values fall back to the default")
}
