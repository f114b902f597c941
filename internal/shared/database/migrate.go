package database

import (
	"movitex/internal/users"

	"gorm.io/gorm"
)

// Migrate keeps the profile read model in shape for local development.
// Booking tables and procedures belong to the backend and are not touched here.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&users.User{},
	)
}
