package handler

import (
	"errors"
	"net/http"

	"metacognition/internal/logger"
	"metacognition/internal/service"
	"metacognition/internal/validate"
)

type fieldsResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// writeServiceError maps service and validation errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var fields *validate.FieldsError
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, fieldsResponse{Error: fields.Error(), Fields: fields.Fields})
	case errors.Is(err, validate.ErrInvalidBody), errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrResponseNotFound),
		errors.Is(err, service.ErrChunkNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.WithRequest(r).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
