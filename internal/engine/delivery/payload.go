package delivery

import (
	"encoding/json"

	"deskcore/internal/platform/models"
)

// payload is the canonical wire shape. The signature covers these exact
// bytes, so the struct is marshalled once per attempt and the same slice
// is both signed and posted.
type payload struct {
	ID        string                 `json:"id"`
	Event     string                 `json:"event"`
	Timestamp int64                  `json:"timestamp"`
	FirmID    string                 `json:"firmId"`
	Data      map[string]interface{} `json:"data"`
}

func buildPayload(event *models.WebhookEvent) ([]byte, error) {
	return json.Marshal(payload{
		ID:        event.ID,
		Event:     event.Event,
		Timestamp: event.Timestamp,
		FirmID:    event.FirmID,
		Data:      event.Data,
	})
}
