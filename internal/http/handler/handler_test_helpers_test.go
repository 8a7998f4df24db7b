package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/http/middleware"
	"real-estate-service/internal/repository"
	"real-estate-service/internal/security"
	"real-estate-service/internal/service"
)

type stubAuthService struct {
	registerFn func(in service.RegisterInput) (*domain.User, error)
	loginFn    func(email, password string) (*domain.User, error)
	requestFn  func(email string) error
	resetFn    func(in service.ResetPasswordInput) error
}

func (s *stubAuthService) Register(_ context.Context, in service.RegisterInput) (*domain.User, error) {
	if s.registerFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.registerFn(in)
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (*domain.User, error) {
	if s.loginFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.loginFn(email, password)
}

func (s *stubAuthService) RequestPasswordReset(_ context.Context, email string) error {
	if s.requestFn == nil {
		return errors.New("not implemented")
	}
	return s.requestFn(email)
}

func (s *stubAuthService) ResetPassword(_ context.Context, in service.ResetPasswordInput) error {
	if s.resetFn == nil {
		return errors.New("not implemented")
	}
	return s.resetFn(in)
}

type stubPropertyService struct {
	createFn     func(caller service.Caller, in service.ListingInput) (*domain.Property, error)
	updateFn     func(caller service.Caller, id uint, in service.ListingInput) (*domain.Property, error)
	deleteFn     func(caller service.Caller, id uint) error
	approveFn    func(caller service.Caller, id uint) (*domain.Property, error)
	rejectFn     func(caller service.Caller, id uint) (*domain.Property, error)
	getVisibleFn func(caller service.Caller, id uint) (*domain.Property, error)
	searchFn     func(q service.PublicSearchQuery) (repository.PageResult[domain.Property], error)
	listOwnFn    func(caller service.Caller) ([]domain.Property, error)
	listAllFn    func(caller service.Caller, q service.AdminListQuery) (repository.PageResult[domain.Property], error)
	contactFn    func(caller service.Caller, id uint, in service.ContactInput) error
}

func (s *stubPropertyService) Create(_ context.Context, caller service.Caller, in service.ListingInput) (*domain.Property, error) {
	if s.createFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.createFn(caller, in)
}

func (s *stubPropertyService) Update(_ context.Context, caller service.Caller, id uint, in service.ListingInput) (*domain.Property, error) {
	if s.updateFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.updateFn(caller, id, in)
}

func (s *stubPropertyService) Delete(_ context.Context, caller service.Caller, id uint) error {
	if s.deleteFn == nil {
		return errors.New("not implemented")
	}
	return s.deleteFn(caller, id)
}

func (s *stubPropertyService) Approve(_ context.Context, caller service.Caller, id uint) (*domain.Property, error) {
	if s.approveFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.approveFn(caller, id)
}

func (s *stubPropertyService) Reject(_ context.Context, caller service.Caller, id uint) (*domain.Property, error) {
	if s.rejectFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.rejectFn(caller, id)
}

func (s *stubPropertyService) GetVisible(_ context.Context, caller service.Caller, id uint) (*domain.Property, error) {
	if s.getVisibleFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.getVisibleFn(caller, id)
}

func (s *stubPropertyService) SearchPublic(_ context.Context, q service.PublicSearchQuery) (repository.PageResult[domain.Property], error) {
	if s.searchFn == nil {
		return repository.PageResult[domain.Property]{}, errors.New("not implemented")
	}
	return s.searchFn(q)
}

func (s *stubPropertyService) ListOwn(_ context.Context, caller service.Caller) ([]domain.Property, error) {
	if s.listOwnFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listOwnFn(caller)
}

func (s *stubPropertyService) ListAll(_ context.Context, caller service.Caller, q service.AdminListQuery) (repository.PageResult[domain.Property], error) {
	if s.listAllFn == nil {
		return repository.PageResult[domain.Property]{}, errors.New("not implemented")
	}
	return s.listAllFn(caller, q)
}

func (s *stubPropertyService) Contact(_ context.Context, caller service.Caller, id uint, in service.ContactInput) error {
	if s.contactFn == nil {
		return errors.New("not implemented")
	}
	return s.contactFn(caller, id, in)
}

type stubUserService struct {
	getByIDFn func(id string) (*domain.User, error)
	listFn    func(caller service.Caller) ([]domain.User, error)
	deleteFn  func(caller service.Caller, id string) error
}

func (s *stubUserService) GetByID(_ context.Context, id string) (*domain.User, error) {
	if s.getByIDFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.getByIDFn(id)
}

func (s *stubUserService) List(_ context.Context, caller service.Caller) ([]domain.User, error) {
	if s.listFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.listFn(caller)
}

func (s *stubUserService) Delete(_ context.Context, caller service.Caller, id string) error {
	if s.deleteFn == nil {
		return errors.New("not implemented")
	}
	return s.deleteFn(caller, id)
}

type stubStorageService struct {
	uploadFn func(ownerID string, size int64, contentType string) (service.UploadedImage, error)
}

func (s *stubStorageService) UploadListingImage(_ context.Context, ownerID string, _ io.Reader, fileSize int64, contentType string) (service.UploadedImage, error) {
	if s.uploadFn == nil {
		return service.UploadedImage{}, errors.New("not implemented")
	}
	return s.uploadFn(ownerID, fileSize, contentType)
}

func (s *stubStorageService) DeleteListingImage(context.Context, string) error { return nil }

func newTestJWTManager() *security.JWTManager {
	return security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456")
}

func newTestCookieManager() *security.CookieManager {
	return security.NewCookieManager("", false, "lax")
}

// serveAs runs a handler through the auth middleware with the given caller
// identity baked into a signed token.
func serveAs(h http.HandlerFunc, caller *service.Caller, req *http.Request) *httptest.ResponseRecorder {
	jwtMgr := newTestJWTManager()
	if caller != nil {
		token, err := jwtMgr.SignAccessToken(caller.ID, string(caller.Role), time.Minute)
		if err != nil {
			panic(err)
		}
		req.AddCookie(&http.Cookie{Name: security.AccessTokenCookie, Value: token})
	}
	rr := httptest.NewRecorder()
	middleware.Authenticate(jwtMgr)(h).ServeHTTP(rr, req)
	return rr
}
