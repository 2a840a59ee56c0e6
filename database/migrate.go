package database

import (
	"authhub/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func MigrateDatabase(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&models.Role{},
		&models.File{},
		&models.User{},
		&models.Notification{},
	)
	if err != nil {
		log.Error("error during migration", zap.Error(err))
		return err
	}

	log.Info("database migrations completed")
	return nil
}
