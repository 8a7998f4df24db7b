package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/observability"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	List() ([]domain.User, error)
	UpdatePasswordByEmail(email, passwordHash string) error
	Delete(id string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *domain.User) error {
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if err := r.db.Create(user).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByID(id string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "success")
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", strings.TrimSpace(strings.ToLower(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "success")
	return &user, nil
}

func (r *GormUserRepository) List() ([]domain.User, error) {
	var users []domain.User
	if err := r.db.Order("created_at desc").Find(&users).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "list", "success")
	return users, nil
}

func (r *GormUserRepository) UpdatePasswordByEmail(email, passwordHash string) error {
	res := r.db.Model(&domain.User{}).
		Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "update_password", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "update_password", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "update_password", "success")
	return nil
}

// Delete removes the user and their listings in one transaction, mirroring
// the cascade the schema constraint declares.
func (r *GormUserRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", id).Delete(&domain.Property{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrUserNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "delete", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "delete", "success")
	return nil
}
