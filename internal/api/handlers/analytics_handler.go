package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/analytics"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/platform/auth"
)

type AnalyticsHandler struct {
	service *analytics.Service
}

func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// sinceParam reads ?days= with a 7-day default and a 90-day cap.
func sinceParam(r *http.Request) time.Time {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 90 {
			days = parsed
		}
	}
	return time.Now().AddDate(0, 0, -days)
}

func (h *AnalyticsHandler) GetUsageSummary(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	summary, err := h.service.GetUsageSummary(claims.FirmID, sinceParam(r))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to compute usage summary", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *AnalyticsHandler) GetEndpointStats(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	stats, err := h.service.GetEndpointStats(claims.FirmID, sinceParam(r))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to compute endpoint stats", nil)
		return
	}
	if stats == nil {
		stats = []analytics.EndpointStats{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
