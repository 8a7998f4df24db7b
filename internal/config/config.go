package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPPort           string
	LogLevel           string
	CORSAllowedOrigins []string

	DatabaseURL string

	JWTIssuer      string
	JWTAudience    string
	JWTSecret      string
	JWTAccessTTL   time.Duration
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string

	RedisAddr      string
	SearchCacheTTL time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	ResetTokenTTL          time.Duration
	FrontendBaseURL        string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int

	OTELTracingEnabled       bool
	OTELExporterOTLPEndpoint string
	OTELExporterOTLPInsecure bool
	OTELServiceName          string
	OTELEnvironment          string
	OTELTraceSamplingRatio   float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins:       getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		JWTIssuer:                getEnv("JWT_ISSUER", "real-estate-service"),
		JWTAudience:              getEnv("JWT_AUDIENCE", "real-estate-service-api"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		CookieDomain:             os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:             getEnvBool("COOKIE_SECURE", true),
		CookieSameSite:           strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		MinioEndpoint:            os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:           os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:           os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:              getEnv("MINIO_BUCKET", "listing-images"),
		MinioUseSSL:              getEnvBool("MINIO_USE_SSL", false),
		FrontendBaseURL:          getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		BootstrapAdminEmail:      strings.TrimSpace(strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
		BootstrapAdminPassword:   os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		AuthRateLimitPerMin:      getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:       getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "real-estate-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
	}

	accessTTL, err := time.ParseDuration(getEnv("JWT_ACCESS_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("parse JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWTAccessTTL = accessTTL

	resetTTL, err := time.ParseDuration(getEnv("RESET_TOKEN_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("parse RESET_TOKEN_TTL: %w", err)
	}
	cfg.ResetTokenTTL = resetTTL

	cacheTTL, err := time.ParseDuration(getEnv("SEARCH_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("parse SEARCH_CACHE_TTL: %w", err)
	}
	cfg.SearchCacheTTL = cacheTTL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > 24*time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 24h")
	}
	if c.ResetTokenTTL <= 0 || c.ResetTokenTTL > 24*time.Hour {
		errs = append(errs, "RESET_TOKEN_TTL must be between 1s and 24h")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be within [0, 1]")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
