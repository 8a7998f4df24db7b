package middleware

import (
	"context"
	"net/http"
	"strings"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/http/response"
	"real-estate-service/internal/security"
	"real-estate-service/internal/service"
)

type contextKey string

const callerContextKey contextKey = "caller"

// CallerFromContext returns the caller attached by Authenticate. A zero
// Caller means the request was anonymous.
func CallerFromContext(ctx context.Context) service.Caller {
	if caller, ok := ctx.Value(callerContextKey).(service.Caller); ok {
		return caller
	}
	return service.Caller{}
}

// BearerToken extracts the access token from the auth cookie or the
// Authorization header, cookie first.
func BearerToken(r *http.Request) string {
	if raw := security.GetCookie(r, security.AccessTokenCookie); raw != "" {
		return raw
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

// Authenticate resolves credentials into a request-scoped caller. Requests
// without credentials, or with invalid ones, continue anonymously; route
// guards decide whether that is acceptable.
func Authenticate(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			caller := service.Caller{
				ID:            claims.Subject,
				Role:          domain.Role(claims.Role),
				Authenticated: true,
			}
			ctx := context.WithValue(r.Context(), callerContextKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CallerFromContext(r.Context()).Authenticated {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from anyone but admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := CallerFromContext(r.Context())
		if !caller.Authenticated {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		if !caller.IsAdmin() {
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
