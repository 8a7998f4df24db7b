package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"real-estate-service/internal/http/middleware"
	"real-estate-service/internal/http/response"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	user, err := h.userSvc.GetByID(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	users, err := h.userSvc.List(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, users)
}

func (h *UserHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid user id", nil)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.userSvc.Delete(r.Context(), caller, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "user.delete",
		ActorID:    caller.ID,
		TargetType: "user",
		TargetID:   id,
		Action:     "delete",
		Outcome:    "success",
		Reason:     "account_removed",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}
