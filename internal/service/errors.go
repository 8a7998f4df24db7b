package service

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation requires a signed-in caller.
	ErrNotAuthenticated = errors.New("authentication required")

	// ErrNotAuthorized is returned when the caller fails an authorization check.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidCredentials covers both unknown email and wrong password at login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registration hits an existing account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrTokenInvalid covers unknown or already-consumed reset tokens.
	ErrTokenInvalid = errors.New("invalid reset token")

	// ErrTokenExpired is returned for reset tokens past their expiry.
	ErrTokenExpired = errors.New("reset token expired")

	// ErrListingNotFound hides listings the caller may not see as well as
	// listings that do not exist.
	ErrListingNotFound = errors.New("listing not found")

	ErrUserNotFound = errors.New("user not found")
)

// ValidationError carries a user-facing message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(message string) error {
	return &ValidationError{Message: message}
}

// AsValidationError reports whether err is a validation failure and
// returns the embedded message.
func AsValidationError(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}
