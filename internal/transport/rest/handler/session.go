package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/transport/rest/middleware"
	"metacognition/internal/validate"
)

// SessionManager drives the learning session lifecycle
type SessionManager interface {
	Create(ctx context.Context, userID string, req *model.CreateSessionRequest) (*model.Session, error)
	List(ctx context.Context, userID string, limit, skip int) ([]model.SessionPreview, error)
	Get(ctx context.Context, userID, id string) (*model.Session, error)
	CompleteChunk(ctx context.Context, userID, id, chunkID string) (*model.Session, error)
}

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionSvc SessionManager
	validator  *validate.Validator
	log        *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc SessionManager, v *validate.Validator, log *logger.Logger) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc, validator: v, log: log.Component("session_handler")}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSessionRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	session, err := h.sessionSvc.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// List handles GET /v1/sessions?limit=&skip=
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	skip, err := queryInt(r, "skip")
	if err != nil {
		writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
		return
	}

	sessions, err := h.sessionSvc.List(r.Context(), middleware.GetUserID(r.Context()), limit, skip)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.sessionSvc.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// CompleteChunk handles PATCH /v1/sessions/{id}/complete-chunk
func (h *SessionHandler) CompleteChunk(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.CompleteChunkRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	session, err := h.sessionSvc.CompleteChunk(r.Context(), middleware.GetUserID(r.Context()), id, req.ChunkID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// queryInt reads an optional non-negative integer query param; absent means 0
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
