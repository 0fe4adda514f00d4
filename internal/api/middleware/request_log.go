package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/pkg/metrics"
	"deskcore/internal/platform/auth"
	"deskcore/internal/platform/models"
)

// RequestLogStore persists one request log row.
type RequestLogStore interface {
	Insert(entry *models.RequestLog) error
}

type RequestLogMiddleware struct {
	store RequestLogStore
}

func NewRequestLogMiddleware(store RequestLogStore) *RequestLogMiddleware {
	return &RequestLogMiddleware{store: store}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Handle records each request for usage analytics. Persistence runs off
// the request path; a failed insert loses one data point, never the
// response.
func (m *RequestLogMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(recorder, r)

		entry := &models.RequestLog{
			Method:         r.Method,
			Path:           r.URL.Path,
			StatusCode:     recorder.status,
			ResponseTimeMs: time.Since(start).Milliseconds(),
		}
		if claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims); ok {
			entry.FirmID = claims.FirmID
		}
		if key, ok := r.Context().Value(apiContext.APIKey).(*models.APIKey); ok {
			entry.FirmID = key.FirmID
			entry.APIKeyID = key.ID
		}

		metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()

		go func() {
			if err := m.store.Insert(entry); err != nil {
				log.Warn().Err(err).Msg("failed to persist request log")
			}
		}()
	}
}
