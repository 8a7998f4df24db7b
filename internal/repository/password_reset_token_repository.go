package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/observability"
)

var ErrResetTokenNotFound = errors.New("password reset token not found")

type PasswordResetTokenRepository interface {
	Create(token *domain.PasswordResetToken) error
	FindByHash(tokenHash string) (*domain.PasswordResetToken, error)
	DeleteByEmail(email string) error
	DeleteByID(id uint) error
}

type GormPasswordResetTokenRepository struct{ db *gorm.DB }

func NewPasswordResetTokenRepository(db *gorm.DB) PasswordResetTokenRepository {
	return &GormPasswordResetTokenRepository{db: db}
}

func (r *GormPasswordResetTokenRepository) Create(token *domain.PasswordResetToken) error {
	token.Email = strings.TrimSpace(strings.ToLower(token.Email))
	if err := r.db.Create(token).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "reset_token", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "reset_token", "create", "success")
	return nil
}

func (r *GormPasswordResetTokenRepository) FindByHash(tokenHash string) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := r.db.Where("token_hash = ?", tokenHash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "reset_token", "find_by_hash", "not_found")
			return nil, ErrResetTokenNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "reset_token", "find_by_hash", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "reset_token", "find_by_hash", "success")
	return &token, nil
}

// DeleteByEmail enforces the one-live-token-per-email rule; issuing a new
// token always starts here.
func (r *GormPasswordResetTokenRepository) DeleteByEmail(email string) error {
	err := r.db.Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		Delete(&domain.PasswordResetToken{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "reset_token", "delete_by_email", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "reset_token", "delete_by_email", "success")
	return nil
}

func (r *GormPasswordResetTokenRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.PasswordResetToken{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "reset_token", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "reset_token", "delete", "not_found")
		return ErrResetTokenNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "reset_token", "delete", "success")
	return nil
}
