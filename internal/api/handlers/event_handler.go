package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/delivery"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/platform/models"
)

type EventHandler struct {
	scheduler *delivery.Scheduler
}

func NewEventHandler(scheduler *delivery.Scheduler) *EventHandler {
	return &EventHandler{scheduler: scheduler}
}

// Publish accepts a platform event and fans it out to the firm's
// subscribed endpoints. Delivery happens asynchronously; 202 means the
// event was accepted, not that any endpoint has seen it.
func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	key := r.Context().Value(apiContext.APIKey).(*models.APIKey)

	var req struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	event := &models.WebhookEvent{
		ID:        "evt_" + uuid.New().String(),
		Event:     req.Event,
		Timestamp: time.Now().Unix(),
		FirmID:    key.FirmID,
		Data:      req.Data,
	}

	if err := h.scheduler.Publish(event); err != nil {
		if err == delivery.ErrUnknownEventType {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown event type: "+req.Event, nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to publish event", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"id": event.ID, "status": "accepted"})
}
