package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"real-estate-service/internal/http/response"
	"real-estate-service/internal/observability"
	"real-estate-service/internal/security"
	"real-estate-service/internal/service"
)

type AuthHandler struct {
	authSvc   service.AuthService
	jwtMgr    *security.JWTManager
	cookies   *security.CookieManager
	accessTTL time.Duration
}

func NewAuthHandler(authSvc service.AuthService, jwtMgr *security.JWTManager, cookies *security.CookieManager, accessTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authSvc:   authSvc,
		jwtMgr:    jwtMgr,
		cookies:   cookies,
		accessTTL: accessTTL,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	user, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.issueSession(w, user.ID, string(user.Role)); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create session", nil)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "auth.register",
		ActorID:    user.ID,
		TargetType: "user",
		TargetID:   user.ID,
		Action:     "register",
		Outcome:    "success",
		Reason:     "account_created",
	}, "email", user.Email)
	response.JSON(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	user, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.issueSession(w, user.ID, string(user.Role)); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create session", nil)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "auth.login",
		ActorID:    user.ID,
		TargetType: "user",
		TargetID:   user.ID,
		Action:     "login",
		Outcome:    "success",
		Reason:     "credentials_verified",
	})
	response.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearAccessTokenCookie(w)
	response.JSON(w, r, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	if err := h.authSvc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Identical response whether or not the account exists.
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message": "if the email is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token           string `json:"token"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	if err := h.authSvc.ResetPassword(r.Context(), service.ResetPasswordInput{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": "password updated"})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, userID, role string) error {
	token, err := h.jwtMgr.SignAccessToken(userID, role, h.accessTTL)
	if err != nil {
		return err
	}
	h.cookies.SetAccessTokenCookie(w, token, h.accessTTL)
	return nil
}
