package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"real-estate-service/internal/domain"
	"real-estate-service/internal/repository"
	"real-estate-service/internal/service"
)

func withChiParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPropertyHandlerSearchParsesFilters(t *testing.T) {
	var got service.PublicSearchQuery
	svc := &stubPropertyService{
		searchFn: func(q service.PublicSearchQuery) (repository.PageResult[domain.Property], error) {
			got = q
			return repository.PageResult[domain.Property]{Page: 1, PageSize: 12}, nil
		},
	}
	h := NewPropertyHandler(svc, &stubStorageService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?q=ocean&min_price=100&max_price=900&page=2&page_size=6", nil)
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	want := service.PublicSearchQuery{Query: "ocean", MinPrice: 100, MaxPrice: 900, Page: 2, PageSize: 6}
	if got != want {
		t.Fatalf("query = %+v, want %+v", got, want)
	}
}

func TestPropertyHandlerSearchIgnoresBadNumbers(t *testing.T) {
	var got service.PublicSearchQuery
	svc := &stubPropertyService{
		searchFn: func(q service.PublicSearchQuery) (repository.PageResult[domain.Property], error) {
			got = q
			return repository.PageResult[domain.Property]{}, nil
		},
	}
	h := NewPropertyHandler(svc, &stubStorageService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?min_price=abc&page=-3", nil)
	h.Search(httptest.NewRecorder(), req)

	if got.MinPrice != 0 || got.Page != 0 {
		t.Fatalf("bad numbers must fall back to zero: %+v", got)
	}
}

func TestPropertyHandlerGet(t *testing.T) {
	svc := &stubPropertyService{
		getVisibleFn: func(caller service.Caller, id uint) (*domain.Property, error) {
			if id == 7 {
				return &domain.Property{ID: 7, Title: "Loft", Status: domain.StatusApproved}, nil
			}
			return nil, service.ErrListingNotFound
		},
	}
	h := NewPropertyHandler(svc, &stubStorageService{})

	t.Run("found", func(t *testing.T) {
		req := withChiParam(httptest.NewRequest(http.MethodGet, "/api/v1/properties/7", nil), "id", "7")
		rr := httptest.NewRecorder()
		h.Get(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("hidden or missing", func(t *testing.T) {
		req := withChiParam(httptest.NewRequest(http.MethodGet, "/api/v1/properties/8", nil), "id", "8")
		rr := httptest.NewRecorder()
		h.Get(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("non-numeric id", func(t *testing.T) {
		req := withChiParam(httptest.NewRequest(http.MethodGet, "/api/v1/properties/abc", nil), "id", "abc")
		rr := httptest.NewRecorder()
		h.Get(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestPropertyHandlerCreateForwardsCaller(t *testing.T) {
	var gotCaller service.Caller
	svc := &stubPropertyService{
		createFn: func(caller service.Caller, in service.ListingInput) (*domain.Property, error) {
			gotCaller = caller
			return &domain.Property{ID: 1, Title: in.Title, Status: domain.StatusPending, OwnerID: caller.ID}, nil
		},
	}
	h := NewPropertyHandler(svc, &stubStorageService{})
	caller := service.Caller{ID: "owner-1", Role: domain.RoleUser, Authenticated: true}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/me/properties",
		strings.NewReader(`{"title":"Loft","address":"1 Main St","price":100,"status":"DRAFT"}`))
	rr := serveAs(h.Create, &caller, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotCaller.ID != "owner-1" || !gotCaller.Authenticated {
		t.Fatalf("caller not forwarded: %+v", gotCaller)
	}
}

func TestPropertyHandlerUpdateAuthzMapping(t *testing.T) {
	svc := &stubPropertyService{
		updateFn: func(service.Caller, uint, service.ListingInput) (*domain.Property, error) {
			return nil, service.ErrNotAuthorized
		},
	}
	h := NewPropertyHandler(svc, &stubStorageService{})
	caller := service.Caller{ID: "other-1", Role: domain.RoleUser, Authenticated: true}
	req := withChiParam(httptest.NewRequest(http.MethodPut, "/api/v1/me/properties/5",
		strings.NewReader(`{"title":"X","address":"A"}`)), "id", "5")
	rr := serveAs(h.Update, &caller, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestPropertyHandlerModeration(t *testing.T) {
	approved := &domain.Property{ID: 5, Status: domain.StatusApproved}
	rejected := &domain.Property{ID: 5, Status: domain.StatusRejected}
	svc := &stubPropertyService{
		approveFn: func(caller service.Caller, id uint) (*domain.Property, error) { return approved, nil },
		rejectFn:  func(caller service.Caller, id uint) (*domain.Property, error) { return rejected, nil },
	}
	h := NewPropertyHandler(svc, &stubStorageService{})
	admin := service.Caller{ID: "admin-1", Role: domain.RoleAdmin, Authenticated: true}

	t.Run("approve", func(t *testing.T) {
		req := withChiParam(httptest.NewRequest(http.MethodPost, "/api/v1/admin/properties/5/approve", nil), "id", "5")
		rr := serveAs(h.Approve, &admin, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"APPROVED"`) {
			t.Fatalf("approved status missing from body: %s", rr.Body.String())
		}
	})

	t.Run("reject", func(t *testing.T) {
		req := withChiParam(httptest.NewRequest(http.MethodPost, "/api/v1/admin/properties/5/reject", nil), "id", "5")
		rr := serveAs(h.Reject, &admin, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"REJECTED"`) {
			t.Fatalf("rejected status missing from body: %s", rr.Body.String())
		}
	})
}

func TestPropertyHandlerContactValidationMapping(t *testing.T) {
	svc := &stubPropertyService{
		contactFn: func(_ service.Caller, _ uint, in service.ContactInput) error {
			if in.Message == "" {
				return &service.ValidationError{Message: "message is required"}
			}
			return nil
		},
	}
	h := NewPropertyHandler(svc, &stubStorageService{})

	req := withChiParam(httptest.NewRequest(http.MethodPost, "/api/v1/properties/6/contact",
		strings.NewReader(`{"name":"Bo","email":"bo@example.com","message":""}`)), "id", "6")
	rr := httptest.NewRecorder()
	h.Contact(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	req = withChiParam(httptest.NewRequest(http.MethodPost, "/api/v1/properties/6/contact",
		strings.NewReader(`{"name":"Bo","email":"bo@example.com","message":"hi"}`)), "id", "6")
	rr = httptest.NewRecorder()
	h.Contact(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestPropertyHandlerUploadImage(t *testing.T) {
	newUploadRequest := func(t *testing.T, field, contentType string, payload []byte) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="photo.jpg"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write part: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("close writer: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/me/properties/images", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}
	caller := service.Caller{ID: "owner-1", Role: domain.RoleUser, Authenticated: true}

	t.Run("success returns url", func(t *testing.T) {
		storage := &stubStorageService{
			uploadFn: func(ownerID string, size int64, contentType string) (service.UploadedImage, error) {
				if ownerID != "owner-1" {
					t.Fatalf("unexpected owner %q", ownerID)
				}
				return service.UploadedImage{ObjectKey: "listings/owner-1/x.jpg", URL: "http://minio/listing-images/listings/owner-1/x.jpg"}, nil
			},
		}
		h := NewPropertyHandler(&stubPropertyService{}, storage)
		rr := serveAs(h.UploadImage, &caller, newUploadRequest(t, "image", "image/jpeg", []byte("jpegdata")))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		if !strings.Contains(rr.Body.String(), "listing-images") {
			t.Fatalf("url missing from body: %s", rr.Body.String())
		}
	})

	t.Run("wrong field name", func(t *testing.T) {
		h := NewPropertyHandler(&stubPropertyService{}, &stubStorageService{})
		rr := serveAs(h.UploadImage, &caller, newUploadRequest(t, "file", "image/jpeg", []byte("x")))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("invalid type maps to 400", func(t *testing.T) {
		storage := &stubStorageService{
			uploadFn: func(string, int64, string) (service.UploadedImage, error) {
				return service.UploadedImage{}, service.ErrInvalidFileType
			},
		}
		h := NewPropertyHandler(&stubPropertyService{}, storage)
		rr := serveAs(h.UploadImage, &caller, newUploadRequest(t, "image", "image/gif", []byte("gif")))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "INVALID_FILE_TYPE") {
			t.Fatalf("expected INVALID_FILE_TYPE code: %s", rr.Body.String())
		}
	})
}

func TestUserHandlerMe(t *testing.T) {
	svc := &stubUserService{
		getByIDFn: func(id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "ana@example.com"}, nil
		},
	}
	h := NewUserHandler(svc)
	caller := service.Caller{ID: "u-1", Role: domain.RoleUser, Authenticated: true}
	rr := serveAs(h.Me, &caller, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ana@example.com") {
		t.Fatalf("user missing from body: %s", rr.Body.String())
	}
}

func TestUserHandlerAdminDelete(t *testing.T) {
	admin := service.Caller{ID: "admin-1", Role: domain.RoleAdmin, Authenticated: true}

	t.Run("admin target protection maps to 403", func(t *testing.T) {
		svc := &stubUserService{
			deleteFn: func(service.Caller, string) error { return service.ErrNotAuthorized },
		}
		h := NewUserHandler(svc)
		req := withChiParam(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/admin-2", nil), "id", "admin-2")
		rr := serveAs(h.AdminDelete, &admin, req)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		var deleted string
		svc := &stubUserService{
			deleteFn: func(_ service.Caller, id string) error {
				deleted = id
				return nil
			},
		}
		h := NewUserHandler(svc)
		req := withChiParam(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/users/u-9", nil), "id", "u-9")
		rr := serveAs(h.AdminDelete, &admin, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if deleted != "u-9" {
			t.Fatalf("deleted = %q", deleted)
		}
	})
}
