package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/transport/rest/middleware"
	"metacognition/internal/validate"
)

// ResponseManager records and amends chunk responses
type ResponseManager interface {
	Submit(ctx context.Context, userID string, req *model.SubmitResponseRequest) (*model.Response, error)
	ListBySession(ctx context.Context, userID, sessionID string) ([]*model.Response, error)
	PatchReflection(ctx context.Context, userID, id string, update model.ReflectionUpdate) (*model.Response, error)
	Delete(ctx context.Context, userID, id string) error
}

// ResponseHandler handles response endpoints
type ResponseHandler struct {
	responseSvc ResponseManager
	validator   *validate.Validator
	log         *logger.Logger
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc ResponseManager, v *validate.Validator, log *logger.Logger) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc, validator: v, log: log.Component("response_handler")}
}

// Submit handles POST /v1/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitResponseRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	resp, err := h.responseSvc.Submit(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListBySession handles GET /v1/sessions/{id}/responses
func (h *ResponseHandler) ListBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	responses, err := h.responseSvc.ListBySession(r.Context(), middleware.GetUserID(r.Context()), sessionID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if responses == nil {
		responses = []*model.Response{}
	}

	writeJSON(w, http.StatusOK, responses)
}

// PatchReflection handles PATCH /v1/responses/{id}/reflection
func (h *ResponseHandler) PatchReflection(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.ReflectionRequest
	if err := h.validator.DecodeAndValidate(r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	resp, err := h.responseSvc.PatchReflection(r.Context(), middleware.GetUserID(r.Context()), id, req.Update())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /v1/responses/{id}
func (h *ResponseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.responseSvc.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
