package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"real-estate-service/internal/app"
	"real-estate-service/internal/config"
	"real-estate-service/internal/database"
	"real-estate-service/internal/http/handler"
	"real-estate-service/internal/http/middleware"
	"real-estate-service/internal/http/router"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/repository"
	"real-estate-service/internal/security"
	"real-estate-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(observability.NewLogger)

var RuntimeInfraSet = wire.NewSet(
	provideOpenDB,
	provideRedisClient,
	provideSearchCacheStore,
	provideRateLimitBackend,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewPropertyRepository,
	repository.NewPasswordResetTokenRepository,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	providePasswordResetNotifier,
	provideContactNotifier,
	provideAuthService,
	providePropertyService,
	provideStorageService,
	service.NewUserService,
)

var HTTPSet = wire.NewSet(
	provideAuthHandler,
	handler.NewPropertyHandler,
	handler.NewUserHandler,
	provideRouterDependencies,
	provideRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

// provideRedisClient returns nil when no Redis address is configured.
// Downstream providers fall back to in-process implementations.
func provideRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func provideSearchCacheStore(client *redis.Client) service.SearchCacheStore {
	if client == nil {
		return service.NewInMemorySearchCacheStore()
	}
	return service.NewRedisSearchCacheStore(client, "search")
}

func provideRateLimitBackend(client *redis.Client) middleware.Limiter {
	if client == nil {
		return middleware.NewLocalFixedWindowLimiter()
	}
	return middleware.NewRedisFixedWindowLimiter(client, "ratelimit")
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
}

func providePasswordResetNotifier(cfg *config.Config, logger *slog.Logger) service.PasswordResetNotifier {
	return service.NewDevPasswordResetNotifier(logger)
}

func provideContactNotifier(logger *slog.Logger) service.ContactNotifier {
	return service.NewDevContactNotifier(logger)
}

func provideAuthService(
	users repository.UserRepository,
	tokens repository.PasswordResetTokenRepository,
	notifier service.PasswordResetNotifier,
	logger *slog.Logger,
	cfg *config.Config,
) service.AuthService {
	return service.NewAuthService(users, tokens, notifier, logger, cfg.ResetTokenTTL, cfg.FrontendBaseURL)
}

func providePropertyService(
	properties repository.PropertyRepository,
	users repository.UserRepository,
	cache service.SearchCacheStore,
	contact service.ContactNotifier,
	logger *slog.Logger,
	cfg *config.Config,
) service.PropertyService {
	return service.NewPropertyService(properties, users, cache, contact, logger, cfg.SearchCacheTTL)
}

func provideStorageService(cfg *config.Config) (service.StorageService, error) {
	if cfg.MinioEndpoint == "" {
		return nil, errors.New("MINIO_ENDPOINT is required for listing image storage")
	}
	return service.NewMinIOStorageService(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
	)
}

func provideAuthHandler(
	authSvc service.AuthService,
	jwtMgr *security.JWTManager,
	cookies *security.CookieManager,
	cfg *config.Config,
) *handler.AuthHandler {
	return handler.NewAuthHandler(authSvc, jwtMgr, cookies, cfg.JWTAccessTTL)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	propertyHandler *handler.PropertyHandler,
	userHandler *handler.UserHandler,
	jwtMgr *security.JWTManager,
	limiter middleware.Limiter,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		PropertyHandler:  propertyHandler,
		UserHandler:      userHandler,
		JWTManager:       jwtMgr,
		RateLimiter:      limiter,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
	}
}

func provideRouter(dep router.Dependencies, db *gorm.DB, redisClient *redis.Client) http.Handler {
	dep.ReadyCheck = newReadyCheck(db, redisClient)
	return router.New(dep)
}

func newReadyCheck(db *gorm.DB, redisClient *redis.Client) func(r *http.Request) error {
	return func(r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("database handle: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
		}
		return nil
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// MigrationRunner applies the schema without starting the HTTP server.
type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	return database.Migrate(m.db)
}
