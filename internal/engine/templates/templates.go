package templates

// PropertySchema describes one config field. The same structure renders
// the onboarding form and validates submissions.
type PropertySchema struct {
	Type        string      `json:"type"` // string, number, boolean
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

type ConfigSchema struct {
	Type       string                    `json:"type"` // always "object"
	Required   []string                  `json:"required"`
	Properties map[string]PropertySchema `json:"properties"`
}

// EndpointDescriptor names a remote operation the integration exposes.
// Actual protocol clients live outside the gateway.
type EndpointDescriptor struct {
	Name        string `json:"name"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description,omitempty"`
}

const (
	AuthTypeOAuth2 = "oauth2"
	AuthTypeAPIKey = "api_key"
	AuthTypeBasic  = "basic"
)

// IntegrationTemplate is a read-only catalog entry describing how a
// third-party service is onboarded.
type IntegrationTemplate struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Provider     string               `json:"provider"`
	Category     string               `json:"category"`
	AuthType     string               `json:"auth_type"`
	ConfigSchema ConfigSchema         `json:"config_schema"`
	Endpoints    []EndpointDescriptor `json:"endpoints"`
}
