package models

type WebhookEvent struct {
	ID        string                 `json:"id"`
	Event     string                 `json:"event"`
	Timestamp int64                  `json:"timestamp"`
	FirmID    string                 `json:"firmId"`
	Data      map[string]interface{} `json:"data"`
}

// DeliveryAttempt is one HTTP delivery of an event to an endpoint.
// At most maxRetries+1 rows exist per (endpoint, event) pair.
type DeliveryAttempt struct {
	ID            string `json:"id"`
	EndpointID    string `json:"endpoint_id"`
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	AttemptNumber int    `json:"attempt_number"`
	RequestedAt   int64  `json:"requested_at"`
	Success       bool   `json:"success"`
	StatusCode    int    `json:"status_code,omitempty"` // 0 on transport errors
	ResponseBody  string `json:"response_body,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
}
