package database

import (
	"errors"
	"fmt"
	"strings"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/security"

	"gorm.io/gorm"
)

type SeedReport struct {
	Noop         bool
	CreatedAdmin bool
	UpdatedAdmin bool
}

// SeedAdmin upserts the bootstrap admin account. Re-running against an
// already-seeded database is a noop unless the password changed.
func SeedAdmin(db *gorm.DB, email, password string) (SeedReport, error) {
	report := SeedReport{}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return report, errors.New("bootstrap admin email and password are required")
	}

	var existing domain.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, hashErr := security.HashPassword(password)
		if hashErr != nil {
			return report, fmt.Errorf("hash admin password: %w", hashErr)
		}
		admin := domain.User{
			Name:         "Admin User",
			Email:        email,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return report, fmt.Errorf("create admin user: %w", err)
		}
		report.CreatedAdmin = true
		return report, nil
	case err != nil:
		return report, fmt.Errorf("look up admin user: %w", err)
	}

	updates := map[string]any{}
	if existing.Role != domain.RoleAdmin {
		updates["role"] = domain.RoleAdmin
	}
	if !security.VerifyPassword(existing.PasswordHash, password) {
		hash, hashErr := security.HashPassword(password)
		if hashErr != nil {
			return report, fmt.Errorf("hash admin password: %w", hashErr)
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		report.Noop = true
		return report, nil
	}
	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return report, fmt.Errorf("update admin user: %w", err)
	}
	report.UpdatedAdmin = true
	return report, nil
}
