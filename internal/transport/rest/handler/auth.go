package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/transport/rest/middleware"
	"metacognition/internal/validate"
)

// Authenticator issues and revokes learner tokens
type Authenticator interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Guest() (*model.LoginResponse, error)
	Logout(ctx context.Context, claims *model.UserClaims) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc   Authenticator
	validator *validate.Validator
	log       *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc Authenticator, v *validate.Validator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, validator: v, log: log.Component("auth_handler")}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	resp, err := h.authSvc.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Guest handles POST /v1/auth/guest
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authSvc.Guest()
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(r.Context(), middleware.GetClaims(r.Context())); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing authorization")
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
