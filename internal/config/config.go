package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	DatabaseDriver string // postgres or sqlite
	DatabaseURL    string
	SessionSecret  string

	// Status given to newly created comments. "approved" publishes immediately,
	// "pending" routes every new comment through the moderation queue.
	CommentDefaultStatus string
	ReactionCooldown     time.Duration
	RecentLimit          int
	MaxRecentLimit       int

	ArticleCacheSize int
	ArticleCacheTTL  time.Duration

	// Seeded on first start when no admin exists
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() Config {
	return Config{
		Port:                 getenv("PORT", "8080"),
		GinMode:              getenv("GIN_MODE", "release"),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
		DatabaseDriver:       strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL:          getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=quillpress port=5432 sslmode=disable"),
		SessionSecret:        getenv("SESSION_SECRET", "secret_key_change_me"),
		CommentDefaultStatus: strings.ToLower(getenv("COMMENT_DEFAULT_STATUS", "approved")),
		ReactionCooldown:     time.Duration(getenvInt("REACTION_COOLDOWN_SECONDS", 60)) * time.Second,
		RecentLimit:          getenvInt("RECENT_COMMENTS_LIMIT", 10),
		MaxRecentLimit:       getenvInt("RECENT_COMMENTS_MAX_LIMIT", 50),
		ArticleCacheSize:     getenvInt("ARTICLE_CACHE_SIZE", 500),
		ArticleCacheTTL:      time.Duration(getenvInt("ARTICLE_CACHE_TTL_SECONDS", 300)) * time.Second,
		AdminEmail:           getenv("ADMIN_EMAIL", ""),
		AdminPassword:        getenv("ADMIN_PASSWORD", ""),
		AdminName:            getenv("ADMIN_NAME", "Administrator"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
