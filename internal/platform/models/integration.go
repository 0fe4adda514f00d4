package models

// Integration status lifecycle: PENDING until the first successful
// remote call, then ACTIVE, or ERROR on connector failure.
const (
	IntegrationStatusPending = "PENDING"
	IntegrationStatusActive  = "ACTIVE"
	IntegrationStatusError   = "ERROR"
)

type TenantIntegration struct {
	ID                   string                 `json:"id"`
	FirmID               string                 `json:"firm_id"`
	TemplateID           string                 `json:"template_id"`
	Config               map[string]interface{} `json:"config"` // JSON object in DB
	EncryptedCredentials string                 `json:"-"`      // vault envelope, opaque
	Status               string                 `json:"status"`
	IsActive             bool                   `json:"is_active"`
	LastError            string                 `json:"last_error,omitempty"`
	CreatedAt            int64                  `json:"created_at"`
	UpdatedAt            int64                  `json:"updated_at"`
}
