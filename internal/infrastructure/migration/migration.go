package migration

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	appLogger "nomadly/internal/shared/logger"
)

const defaultDir = "migrations"

// Up applies all pending migrations from dir.
func Up(db *gorm.DB, dir string) error {
	if dir == "" {
		dir = defaultDir
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	appLogger.Info("migrations applied", "version", version)
	return nil
}

// Down rolls back the most recent migration.
func Down(db *gorm.DB, dir string) error {
	if dir == "" {
		dir = defaultDir
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Down(sqlDB, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}
