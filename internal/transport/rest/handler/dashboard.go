package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"metacognition/internal/export"
	"metacognition/internal/logger"
	"metacognition/internal/model"
	"metacognition/internal/transport/rest/middleware"
)

// DashboardBuilder computes a learner's dashboard report
type DashboardBuilder interface {
	Dashboard(ctx context.Context, userID string) (*model.DashboardReport, error)
}

// DashboardHandler serves the learning dashboard
type DashboardHandler struct {
	analytics DashboardBuilder
	log       *logger.Logger
	now       func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(analytics DashboardBuilder, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		analytics: analytics,
		log:       log.Component("dashboard_handler"),
		now:       time.Now,
	}
}

// Get handles GET /v1/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Export handles GET /v1/dashboard/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	// Render fully before writing headers so a failure can still be reported
	var buf bytes.Buffer
	if err := export.WriteDashboard(&buf, report); err != nil {
		writeServiceError(w, r, h.log, fmt.Errorf("render workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("learning-dashboard-%s.xlsx", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
