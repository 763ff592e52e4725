package db

import (
	"fmt"
	"log/slog"

	"quillpress/internal/config"
	"quillpress/internal/models"
	"quillpress/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects, migrates and seeds, then publishes the handle as DB.
func Init(cfg config.Config) (*gorm.DB, error) {
	conn, err := Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	slog.Info("Database connection established", "driver", cfg.DatabaseDriver)

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	slog.Info("Database migration completed")

	if err := seedAdmin(conn, cfg); err != nil {
		return nil, err
	}

	DB = conn
	return conn, nil
}

func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// One connection: the pragma is per connection and ":memory:" databases are too.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.Comment{},
		&models.CommentReaction{},
		&models.CommentFlag{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func seedAdmin(conn *gorm.DB, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := conn.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		slog.Debug("Admin already seeded, skipping")
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin %s: %w", cfg.AdminEmail, err)
	}
	slog.Info("Initial admin created", "email", cfg.AdminEmail)
	return nil
}
