package main

import (
	"log/slog"
	"os"
	"strings"

	"quillpress/internal/config"
	"quillpress/internal/db"
	"quillpress/internal/metrics"
	"quillpress/internal/middleware"
	"quillpress/internal/models"
	"quillpress/internal/router"
	"quillpress/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		slog.Info("No .env file found, using environment variables")
	}

	conn, err := db.Init(cfg)
	if err != nil {
		slog.Error("Database initialization failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		slog.Error("Metrics initialization failed", "error", err)
		os.Exit(1)
	}

	articles, err := services.NewArticleLookup(conn, cfg.ArticleCacheSize, cfg.ArticleCacheTTL)
	if err != nil {
		slog.Error("Article cache initialization failed", "error", err)
		os.Exit(1)
	}
	notifications := services.NewNotificationService(conn, nil)
	opts := services.Options{
		DefaultStatus:    models.CommentStatus(cfg.CommentDefaultStatus),
		ReactionCooldown: cfg.ReactionCooldown,
		RecentLimit:      cfg.RecentLimit,
		MaxRecentLimit:   cfg.MaxRecentLimit,
		Metrics:          m,
		Notifier:         notifications,
	}
	if !opts.DefaultStatus.Valid() {
		slog.Warn("Unknown COMMENT_DEFAULT_STATUS, falling back to approved", "value", cfg.CommentDefaultStatus)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logger), gin.Recovery())

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions("quillpress_session", store))
	r.Use(middleware.LoadUser(conn))

	router.RegisterRoutes(r, router.Deps{
		DB:            conn,
		Comments:      services.NewCommentService(conn, articles, opts),
		Reactions:     services.NewReactionService(conn, opts),
		Flags:         services.NewFlagService(conn, opts),
		Viewer:        services.NewViewerService(conn),
		Notifications: notifications,
		Gatherer:      registry,
	})

	slog.Info("Quillpress server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
