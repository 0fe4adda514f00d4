package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/registry"
	"deskcore/internal/engine/signature"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/platform/auth"
	"deskcore/internal/platform/models"
	"deskcore/internal/platform/repositories"
)

type EndpointHandler struct {
	registry   *registry.Service
	deliveries *repositories.DeliveryRepository
	client     *http.Client
}

func NewEndpointHandler(reg *registry.Service, deliveries *repositories.DeliveryRepository) *EndpointHandler {
	return &EndpointHandler{
		registry:   reg,
		deliveries: deliveries,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// createResponse is the only place the endpoint secret ever leaves the
// server. Subscribers must store it on receipt.
type createResponse struct {
	*models.WebhookEndpoint
	Secret string `json:"secret"`
}

func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var input registry.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	endpoint, validationErrors := h.registry.Create(claims.FirmID, input)
	if len(validationErrors) > 0 {
		errors.WriteValidationErrors(w, validationErrors)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createResponse{WebhookEndpoint: endpoint, Secret: endpoint.Secret})
}

func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	endpoints, err := h.registry.List(claims.FirmID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list endpoints", nil)
		return
	}
	if endpoints == nil {
		endpoints = []*models.WebhookEndpoint{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(endpoints)
}

func (h *EndpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	endpoint, err := h.registry.Get(claims.FirmID, params.ByName("endpoint_id"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(endpoint)
}

func (h *EndpointHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	var input registry.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	endpoint, validationErrors, err := h.registry.Update(claims.FirmID, params.ByName("endpoint_id"), input)
	if err == registry.ErrEndpointNotFound {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update endpoint", nil)
		return
	}
	if len(validationErrors) > 0 {
		errors.WriteValidationErrors(w, validationErrors)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(endpoint)
}

func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	if err := h.registry.Delete(claims.FirmID, params.ByName("endpoint_id")); err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Ping sends a signed test event straight to the endpoint and reports
// the outcome. Nothing is recorded and nothing is retried.
func (h *EndpointHandler) Ping(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	endpoint, err := h.registry.Get(claims.FirmID, params.ByName("endpoint_id"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}

	body, _ := json.Marshal(map[string]interface{}{
		"id":        "evt_" + uuid.New().String(),
		"event":     "ping",
		"timestamp": time.Now().Unix(),
		"firmId":    claims.FirmID,
		"data":      map[string]interface{}{},
	})

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to build ping request", nil)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Deskcore-Signature", signature.Sign(endpoint.Secret, body))
	req.Header.Set("X-Deskcore-Event", "ping")

	result := struct {
		Success    bool   `json:"success"`
		StatusCode int    `json:"status_code,omitempty"`
		Error      string `json:"error,omitempty"`
		DurationMs int64  `json:"duration_ms"`
	}{}

	start := time.Now()
	resp, err := h.client.Do(req)
	result.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
	} else {
		resp.Body.Close()
		result.StatusCode = resp.StatusCode
		result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *EndpointHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	// Ownership check before touching attempt rows.
	endpoint, err := h.registry.Get(claims.FirmID, params.ByName("endpoint_id"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Endpoint not found", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	attempts, err := h.deliveries.ListByEndpoint(endpoint.ID, limit)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list deliveries", nil)
		return
	}
	if attempts == nil {
		attempts = []*models.DeliveryAttempt{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(attempts)
}
