package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"real-estate-service/internal/http/handler"
	"real-estate-service/internal/http/middleware"
	"real-estate-service/internal/http/response"
	"real-estate-service/internal/security"
)

const rateWindow = time.Minute

// Dependencies carries everything the router wires together. RateLimiter
// may be nil, in which case a local fixed window limiter is used.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	PropertyHandler *handler.PropertyHandler
	UserHandler     *handler.UserHandler
	JWTManager      *security.JWTManager
	RateLimiter     middleware.Limiter
	ReadyCheck      func(r *http.Request) error
	CORSOrigins     []string

	AuthRateLimitRPM int
	APIRateLimitRPM  int
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(dep.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   dep.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.Authenticate(dep.JWTManager))

	limiter := dep.RateLimiter
	if limiter == nil {
		limiter = middleware.NewLocalFixedWindowLimiter()
	}
	// Auth endpoints are limited per client IP; the rest of the API keys
	// on the authenticated subject when one is present.
	authRL := middleware.NewDistributedRateLimiter(limiter, dep.AuthRateLimitRPM, rateWindow, middleware.FailClosed, "auth")
	apiRL := middleware.NewDistributedRateLimiterWithKey(limiter, dep.APIRateLimitRPM, rateWindow, middleware.FailOpen, "api",
		middleware.SubjectOrIPKeyFunc(dep.JWTManager))

	r.Get("/health/live", func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, req, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if dep.ReadyCheck != nil {
			if err := dep.ReadyCheck(req); err != nil {
				response.Error(w, req, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", err.Error(), nil)
				return
			}
		}
		response.JSON(w, req, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authRL.Middleware())
			r.Post("/auth/register", dep.AuthHandler.Register)
			r.Post("/auth/login", dep.AuthHandler.Login)
			r.Post("/auth/logout", dep.AuthHandler.Logout)
			r.Post("/auth/forgot-password", dep.AuthHandler.ForgotPassword)
			r.Post("/auth/reset-password", dep.AuthHandler.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiRL.Middleware())

			r.Get("/properties", dep.PropertyHandler.Search)
			r.Get("/properties/{id}", dep.PropertyHandler.Get)
			r.Post("/properties/{id}/contact", dep.PropertyHandler.Contact)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", dep.UserHandler.Me)
				r.Route("/me/properties", func(r chi.Router) {
					r.Get("/", dep.PropertyHandler.ListOwn)
					r.Post("/", dep.PropertyHandler.Create)
					r.Post("/images", dep.PropertyHandler.UploadImage)
					r.Put("/{id}", dep.PropertyHandler.Update)
					r.Delete("/{id}", dep.PropertyHandler.Delete)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/admin/properties", dep.PropertyHandler.AdminList)
				r.Post("/admin/properties/{id}/approve", dep.PropertyHandler.Approve)
				r.Post("/admin/properties/{id}/reject", dep.PropertyHandler.Reject)
				r.Get("/admin/users", dep.UserHandler.AdminList)
				r.Delete("/admin/users/{id}", dep.UserHandler.AdminDelete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, req, http.StatusMethodNotAllowed, "BAD_REQUEST", "method not allowed", nil)
	})

	return r
}
