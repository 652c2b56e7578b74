package db

import (
	"fmt"
	"log/slog"

	"rebuyrnot/internal/config"
	"rebuyrnot/internal/models"
	"rebuyrnot/internal/notify"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured datastore, migrates it and, when enabled,
// seeds reference data and the starter catalog.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established", "driver", cfg.DBDriver)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.DBDriver == "postgres" {
		if err := notify.InstallTriggers(db); err != nil {
			return nil, err
		}
	}

	if cfg.SeedData {
		if err := Seed(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Product{},
		&models.Vote{},
		&models.VoteRateLimit{},
		&models.Comment{},
		&models.Brand{},
		&models.Category{},
		&models.SiteContent{},
		&models.ProductSubmission{},
		&models.Profile{},
		&models.UserRole{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migration completed")
	return nil
}
