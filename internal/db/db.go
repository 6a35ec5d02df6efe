package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wimwenigerkind/LetsMeet/internal/config"
)

// NewDB opens the target Postgres database using the DSN from config.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return database, nil
}

// Migrate creates or updates the target schema. Idempotent; always run
// before an import so that a fresh database works out of the box.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&User{},
		&Address{},
		&Hobby{},
		&Friendship{},
		&Like{},
		&Conversation{},
		&ConversationUser{},
		&Message{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
