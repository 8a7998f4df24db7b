package repository

import (
	"fmt"
	"strings"
	"testing"

	"real-estate-service/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Property{},
		&domain.PasswordResetToken{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Test User", Email: email, PasswordHash: "hash", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}
