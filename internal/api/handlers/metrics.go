package handlers

import (
	"net/http"

	"deskcore/internal/pkg/metrics"
)

type MetricsHandler struct {
	inner http.Handler
}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{inner: metrics.Handler()}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.inner.ServeHTTP(w, r)
}
