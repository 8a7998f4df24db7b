package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"real-estate-service/internal/database"
	"real-estate-service/internal/domain"
	"real-estate-service/internal/http/handler"
	"real-estate-service/internal/http/router"
	"real-estate-service/internal/repository"
	"real-estate-service/internal/security"
	"real-estate-service/internal/service"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-secret-1"
)

type apiError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

// capturingResetNotifier exposes the raw reset token the way a mail
// integration would deliver it.
type capturingResetNotifier struct {
	mu   sync.Mutex
	last service.PasswordResetNotification
}

func (n *capturingResetNotifier) SendPasswordReset(ctx context.Context, note service.PasswordResetNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = note
	return nil
}

func (n *capturingResetNotifier) lastToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last.Token
}

type testServerOptions struct {
	authRateLimitRPM int
	apiRateLimitRPM  int
}

type testServer struct {
	baseURL string
	db      *gorm.DB
	resets  *capturingResetNotifier
	closeFn func()
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithOptions(t, testServerOptions{})
}

func newTestServerWithOptions(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.SeedAdmin(db, testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := repository.NewUserRepository(db)
	properties := repository.NewPropertyRepository(db)
	tokens := repository.NewPasswordResetTokenRepository(db)

	resets := &capturingResetNotifier{}
	authSvc := service.NewAuthService(users, tokens, resets, log, time.Hour, "http://localhost:3000")
	propertySvc := service.NewPropertyService(properties, users, service.NewInMemorySearchCacheStore(), service.NewDevContactNotifier(log), log, time.Minute)
	userSvc := service.NewUserService(users)

	jwtMgr := security.NewJWTManager("real-estate-service", "real-estate-service-api", "integration-test-secret-0123456789")
	cookies := security.NewCookieManager("", false, "lax")

	authRPM := opts.authRateLimitRPM
	if authRPM == 0 {
		authRPM = 1000
	}
	apiRPM := opts.apiRateLimitRPM
	if apiRPM == 0 {
		apiRPM = 1000
	}

	h := router.New(router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authSvc, jwtMgr, cookies, 15*time.Minute),
		PropertyHandler:  handler.NewPropertyHandler(propertySvc, nil),
		UserHandler:      handler.NewUserHandler(userSvc),
		JWTManager:       jwtMgr,
		AuthRateLimitRPM: authRPM,
		APIRateLimitRPM:  apiRPM,
	})
	srv := httptest.NewServer(h)

	return &testServer{
		baseURL: srv.URL,
		db:      db,
		resets:  resets,
		closeFn: srv.Close,
	}
}

func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, apiEnvelope) {
	t.Helper()
	resp, raw := doRawText(t, client, method, url, body, headers)
	var env apiEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%q", err, raw)
	}
	return resp, env
}

func doRawText(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, string(raw)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func register(t *testing.T, client *http.Client, baseURL, name, email, password string) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("register %s: status=%d env=%+v", email, resp.StatusCode, env)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("login %s: status=%d env=%+v", email, resp.StatusCode, env)
	}
}

func createListing(t *testing.T, client *http.Client, baseURL string, body map[string]any) domain.Property {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/me/properties", body, nil)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("create listing: status=%d env=%+v", resp.StatusCode, env)
	}
	var p domain.Property
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	return p
}
