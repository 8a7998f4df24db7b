package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/repository"
	"real-estate-service/internal/security"
)

const minPasswordLength = 6

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type ResetPasswordInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

type AuthService interface {
	// Register creates a new account and returns the stored user.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login verifies credentials and returns the matching user.
	Login(ctx context.Context, email, password string) (*domain.User, error)

	// RequestPasswordReset mints a reset token for the account, replacing
	// any earlier token for the same email. Unknown emails are a silent
	// no-op so the endpoint does not reveal which accounts exist.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and stores the new password.
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
}

type authService struct {
	users        repository.UserRepository
	tokens       repository.PasswordResetTokenRepository
	notifier     PasswordResetNotifier
	logger       *slog.Logger
	tokenTTL     time.Duration
	resetBaseURL string
	now          func() time.Time
}

// NewAuthService builds the account service. resetBaseURL is the frontend
// origin reset links point at; empty disables link construction and the
// notifier falls back to the raw token.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.PasswordResetTokenRepository,
	notifier PasswordResetNotifier,
	logger *slog.Logger,
	tokenTTL time.Duration,
	resetBaseURL string,
) AuthService {
	return &authService{
		users:        users,
		tokens:       tokens,
		notifier:     notifier,
		logger:       logger,
		tokenTTL:     tokenTTL,
		resetBaseURL: strings.TrimRight(strings.TrimSpace(resetBaseURL), "/"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) resetURL(raw string) string {
	if s.resetBaseURL == "" {
		return ""
	}
	return s.resetBaseURL + "/reset-password?token=" + url.QueryEscape(raw)
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if name == "" {
		return nil, newValidationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newValidationError("a valid email address is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, newValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		observability.RecordAuthEvent(ctx, "register", "conflict")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(user); err != nil {
		observability.RecordAuthEvent(ctx, "register", "error")
		return nil, err
	}
	observability.RecordAuthEvent(ctx, "register", "success")
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthEvent(ctx, "login", "denied")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		observability.RecordAuthEvent(ctx, "login", "denied")
		return nil, ErrInvalidCredentials
	}
	observability.RecordAuthEvent(ctx, "login", "success")
	return user, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return newValidationError("a valid email address is required")
	}

	if _, err := s.users.FindByEmail(email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Same response as the happy path.
			observability.RecordPasswordResetEvent(ctx, "request", "unknown_email")
			return nil
		}
		return err
	}

	// At most one live token per email.
	if err := s.tokens.DeleteByEmail(email); err != nil {
		return err
	}

	raw, err := security.NewResetToken()
	if err != nil {
		return fmt.Errorf("mint reset token: %w", err)
	}
	token := &domain.PasswordResetToken{
		Email:     email,
		TokenHash: security.HashResetToken(raw),
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.tokens.Create(token); err != nil {
		observability.RecordPasswordResetEvent(ctx, "request", "error")
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, PasswordResetNotification{
		Email:     email,
		Token:     raw,
		ExpiresAt: token.ExpiresAt,
		ResetURL:  s.resetURL(raw),
	}); err != nil {
		s.logger.ErrorContext(ctx, "password reset notification failed", "email", email, "error", err)
	}
	observability.RecordPasswordResetEvent(ctx, "request", "success")
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if strings.TrimSpace(in.Token) == "" {
		return ErrTokenInvalid
	}
	if len(in.Password) < minPasswordLength {
		return newValidationError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if in.Password != in.ConfirmPassword {
		return newValidationError("passwords do not match")
	}

	token, err := s.tokens.FindByHash(security.HashResetToken(in.Token))
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			observability.RecordPasswordResetEvent(ctx, "reset", "invalid_token")
			return ErrTokenInvalid
		}
		return err
	}
	if token.Expired(s.now()) {
		// Expired tokens are purged so retries get a clean miss.
		if err := s.tokens.DeleteByID(token.ID); err != nil && !errors.Is(err, repository.ErrResetTokenNotFound) {
			return err
		}
		observability.RecordPasswordResetEvent(ctx, "reset", "expired_token")
		return ErrTokenExpired
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordByEmail(token.Email, hash); err != nil {
		return err
	}
	if err := s.tokens.DeleteByID(token.ID); err != nil && !errors.Is(err, repository.ErrResetTokenNotFound) {
		return err
	}
	observability.RecordPasswordResetEvent(ctx, "reset", "success")
	return nil
}
