package handler

import (
	"errors"
	"net/http"

	"real-estate-service/internal/http/response"
	"real-estate-service/internal/service"
)

// writeServiceError maps service-layer failures onto the wire error codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if message, ok := service.AsValidationError(err); ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", message, nil)
		return
	}
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password", nil)
	case errors.Is(err, service.ErrNotAuthorized):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "not authorized", nil)
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, r, http.StatusConflict, "CONFLICT", "email already registered", nil)
	case errors.Is(err, service.ErrTokenInvalid), errors.Is(err, service.ErrTokenExpired):
		response.Error(w, r, http.StatusBadRequest, "INVALID_OR_EXPIRED_TOKEN", "reset token is invalid or expired", nil)
	case errors.Is(err, service.ErrListingNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "listing not found", nil)
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
