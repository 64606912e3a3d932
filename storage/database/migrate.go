package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"EstateLink/internal/model"
	"EstateLink/pkg/logger"
)

// Migrate creates/updates all tables.
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.Branch{},
		&model.Customer{},
		&model.Project{},
		&model.AutomationTask{},
	)

	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
