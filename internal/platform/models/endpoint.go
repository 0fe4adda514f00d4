package models

// RetryPolicy controls backoff between delivery attempts.
type RetryPolicy struct {
	MaxRetries        int     `json:"max_retries"`
	InitialDelayMs    int64   `json:"initial_delay_ms"`
	MaxDelayMs        int64   `json:"max_delay_ms"`
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialDelayMs:    1000,
		MaxDelayMs:        60000,
		BackoffMultiplier: 2,
	}
}

type WebhookEndpoint struct {
	ID              string      `json:"id"`
	FirmID          string      `json:"firm_id"`
	URL             string      `json:"url"`
	Description     string      `json:"description,omitempty"`
	Events          []string    `json:"events"` // JSON array in DB
	Secret          string      `json:"-"`      // shown exactly once, at creation
	RetryPolicy     RetryPolicy `json:"retry_policy"`
	IsActive        bool        `json:"is_active"`
	LastDeliveryAt  int64       `json:"last_delivery_at,omitempty"`
	LastError       string      `json:"last_error,omitempty"`
	CreatedAt       int64       `json:"created_at"`
	UpdatedAt       int64       `json:"updated_at"`
}

// Subscribed reports whether the endpoint listens for the given event type.
func (e *WebhookEndpoint) Subscribed(eventType string) bool {
	for _, ev := range e.Events {
		if ev == eventType {
			return true
		}
	}
	return false
}
