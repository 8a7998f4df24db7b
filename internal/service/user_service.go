package service

import (
	"context"
	"errors"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/repository"
)

type UserService interface {
	// GetByID returns the user's account record.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// List returns every account for the admin user table.
	List(ctx context.Context, caller Caller) ([]domain.User, error)

	// Delete removes an account and all of its listings. Admin accounts
	// cannot be deleted.
	Delete(ctx context.Context, caller Caller, id string) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(_ context.Context, caller Caller) ([]domain.User, error) {
	if !caller.Authenticated {
		return nil, ErrNotAuthenticated
	}
	if !caller.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	return s.users.List()
}

func (s *userService) Delete(ctx context.Context, caller Caller, id string) error {
	target, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if decision := AuthorizeUserDeletion(caller, target); !decision.Allowed {
		observability.RecordUserAdminEvent(ctx, "delete", "denied")
		return denialError(decision)
	}
	if err := s.users.Delete(id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		observability.RecordUserAdminEvent(ctx, "delete", "error")
		return err
	}
	observability.RecordUserAdminEvent(ctx, "delete", "success")
	return nil
}
