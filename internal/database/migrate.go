package database

import (
	"real-estate-service/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Property{},
		&domain.PasswordResetToken{},
	)
}
