package models

// RequestLog is one inbound API request, recorded for usage analytics.
type RequestLog struct {
	ID             string `json:"id"`
	FirmID         string `json:"firm_id"`
	APIKeyID       string `json:"api_key_id,omitempty"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	StatusCode     int    `json:"status_code"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	CreatedAt      int64  `json:"created_at"`
}
