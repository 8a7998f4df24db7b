package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"real-estate-service/internal/http/middleware"
	"real-estate-service/internal/http/response"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/service"
)

type PropertyHandler struct {
	propertySvc service.PropertyService
	storageSvc  service.StorageService
}

func NewPropertyHandler(propertySvc service.PropertyService, storageSvc service.StorageService) *PropertyHandler {
	return &PropertyHandler{
		propertySvc: propertySvc,
		storageSvc:  storageSvc,
	}
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Address     string   `json:"address"`
	ImageURLs   []string `json:"image_urls"`
	Status      string   `json:"status"`
}

func (req listingRequest) toInput() service.ListingInput {
	return service.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Address:     req.Address,
		ImageURLs:   req.ImageURLs,
		Status:      req.Status,
	}
}

// Search serves the public browse page: approved listings only.
func (h *PropertyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.PublicSearchQuery{
		Query:    q.Get("q"),
		MinPrice: parseIntParam(q.Get("min_price")),
		MaxPrice: parseIntParam(q.Get("max_price")),
		Page:     parseIntParam(q.Get("page")),
		PageSize: parseIntParam(q.Get("page_size")),
	}
	result, err := h.propertySvc.SearchPublic(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	property, err := h.propertySvc.GetVisible(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, property)
}

func (h *PropertyHandler) Contact(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	err := h.propertySvc.Contact(r.Context(), caller, id, service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "inquiry sent to the listing agent"})
}

func (h *PropertyHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	items, err := h.propertySvc.ListOwn(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, items)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	property, err := h.propertySvc.Create(r.Context(), caller, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "listing.create",
		ActorID:    caller.ID,
		TargetType: "listing",
		TargetID:   strconv.FormatUint(uint64(property.ID), 10),
		Action:     "create",
		Outcome:    "success",
		Reason:     "listing_created",
	}, "status", string(property.Status))
	response.JSON(w, r, http.StatusCreated, property)
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	property, err := h.propertySvc.Update(r.Context(), caller, id, req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "listing.update",
		ActorID:    caller.ID,
		TargetType: "listing",
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Action:     "update",
		Outcome:    "success",
		Reason:     "listing_updated",
	}, "status", string(property.Status))
	response.JSON(w, r, http.StatusOK, property)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.propertySvc.Delete(r.Context(), caller, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "listing.delete",
		ActorID:    caller.ID,
		TargetType: "listing",
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Action:     "delete",
		Outcome:    "success",
		Reason:     "listing_deleted",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

// UploadImage stores one listing photo and returns its URL for inclusion
// in a subsequent create or update.
func (h *PropertyHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to parse multipart form", nil)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "image file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	uploaded, err := h.storageSvc.UploadListingImage(r.Context(), caller.ID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, service.ErrFileTooBig) {
			response.Error(w, r, http.StatusBadRequest, "FILE_TOO_LARGE", "file size exceeds 5MB limit", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidFileType) {
			response.Error(w, r, http.StatusBadRequest, "INVALID_FILE_TYPE", "only JPEG and PNG images are allowed", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to upload image", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "listing.image.upload",
		ActorID:    caller.ID,
		TargetType: "image",
		TargetID:   uploaded.ObjectKey,
		Action:     "upload",
		Outcome:    "success",
		Reason:     "image_uploaded",
	}, "file_size", header.Size, "content_type", header.Header.Get("Content-Type"))
	response.JSON(w, r, http.StatusOK, map[string]any{
		"object_key": uploaded.ObjectKey,
		"url":        uploaded.URL,
	})
}

func (h *PropertyHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	caller := middleware.CallerFromContext(r.Context())
	result, err := h.propertySvc.ListAll(r.Context(), caller, service.AdminListQuery{
		Status:   q.Get("status"),
		Page:     parseIntParam(q.Get("page")),
		PageSize: parseIntParam(q.Get("page_size")),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, result)
}

func (h *PropertyHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "approve")
}

func (h *PropertyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "reject")
}

func (h *PropertyHandler) moderate(w http.ResponseWriter, r *http.Request, verdict string) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	caller := middleware.CallerFromContext(r.Context())

	decide := h.propertySvc.Reject
	if verdict == "approve" {
		decide = h.propertySvc.Approve
	}
	property, err := decide(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "listing." + verdict,
		ActorID:    caller.ID,
		TargetType: "listing",
		TargetID:   strconv.FormatUint(uint64(id), 10),
		Action:     verdict,
		Outcome:    "success",
		Reason:     "moderation_decision",
	})
	response.JSON(w, r, http.StatusOK, property)
}

func listingIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid listing id", nil)
		return 0, false
	}
	return uint(id64), true
}

func parseIntParam(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
