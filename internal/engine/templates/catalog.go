package templates

// Catalog is an explicit registry of integration templates. Providers
// are independent entries selected by ID; there is no connector base
// type to subclass.
type Catalog struct {
	templates map[string]*IntegrationTemplate
	order     []string
}

func NewCatalog() *Catalog {
	c := &Catalog{templates: make(map[string]*IntegrationTemplate)}
	for _, t := range builtins() {
		c.Register(t)
	}
	return c
}

func (c *Catalog) Register(t *IntegrationTemplate) {
	if _, exists := c.templates[t.ID]; !exists {
		c.order = append(c.order, t.ID)
	}
	c.templates[t.ID] = t
}

func (c *Catalog) Get(id string) (*IntegrationTemplate, bool) {
	t, ok := c.templates[id]
	return t, ok
}

func (c *Catalog) List() []*IntegrationTemplate {
	out := make([]*IntegrationTemplate, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

func builtins() []*IntegrationTemplate {
	return []*IntegrationTemplate{
		{
			ID:       "quickbooks",
			Name:     "QuickBooks Online",
			Provider: "intuit",
			Category: "accounting",
			AuthType: AuthTypeOAuth2,
			ConfigSchema: ConfigSchema{
				Type:     "object",
				Required: []string{"realm_id", "environment"},
				Properties: map[string]PropertySchema{
					"realm_id": {Type: "string", Title: "Company (Realm) ID"},
					"environment": {
						Type:    "string",
						Title:   "Environment",
						Enum:    []string{"sandbox", "production"},
						Default: "production",
					},
					"sync_invoices": {Type: "boolean", Title: "Sync invoices", Default: true},
				},
			},
			Endpoints: []EndpointDescriptor{
				{Name: "list_invoices", Method: "GET", Path: "/v3/company/{realm_id}/query"},
				{Name: "create_invoice", Method: "POST", Path: "/v3/company/{realm_id}/invoice"},
			},
		},
		{
			ID:       "xero",
			Name:     "Xero",
			Provider: "xero",
			Category: "accounting",
			AuthType: AuthTypeOAuth2,
			ConfigSchema: ConfigSchema{
				Type:     "object",
				Required: []string{"tenant_id"},
				Properties: map[string]PropertySchema{
					"tenant_id":     {Type: "string", Title: "Xero tenant ID"},
					"sync_contacts": {Type: "boolean", Title: "Sync contacts", Default: false},
				},
			},
			Endpoints: []EndpointDescriptor{
				{Name: "list_contacts", Method: "GET", Path: "/api.xro/2.0/Contacts"},
			},
		},
		{
			ID:       "stripe",
			Name:     "Stripe",
			Provider: "stripe",
			Category: "payments",
			AuthType: AuthTypeAPIKey,
			ConfigSchema: ConfigSchema{
				Type:     "object",
				Required: []string{"account_id"},
				Properties: map[string]PropertySchema{
					"account_id":       {Type: "string", Title: "Connected account ID"},
					"statement_prefix": {Type: "string", Title: "Statement descriptor prefix"},
				},
			},
			Endpoints: []EndpointDescriptor{
				{Name: "create_payment_link", Method: "POST", Path: "/v1/payment_links"},
			},
		},
		{
			ID:       "slack",
			Name:     "Slack",
			Provider: "slack",
			Category: "communication",
			AuthType: AuthTypeOAuth2,
			ConfigSchema: ConfigSchema{
				Type:     "object",
				Required: []string{"channel"},
				Properties: map[string]PropertySchema{
					"channel":       {Type: "string", Title: "Default channel"},
					"notify_alerts": {Type: "boolean", Title: "Post alert events", Default: true},
				},
			},
			Endpoints: []EndpointDescriptor{
				{Name: "post_message", Method: "POST", Path: "/api/chat.postMessage"},
			},
		},
		{
			ID:       "docusign",
			Name:     "DocuSign",
			Provider: "docusign",
			Category: "documents",
			AuthType: AuthTypeOAuth2,
			ConfigSchema: ConfigSchema{
				Type:     "object",
				Required: []string{"account_id", "base_uri"},
				Properties: map[string]PropertySchema{
					"account_id": {Type: "string", Title: "API account ID"},
					"base_uri":   {Type: "string", Title: "Account base URI"},
					"reminder_days": {
						Type:    "number",
						Title:   "Reminder delay (days)",
						Default: 3,
					},
				},
			},
			Endpoints: []EndpointDescriptor{
				{Name: "create_envelope", Method: "POST", Path: "/restapi/v2.1/accounts/{account_id}/envelopes"},
			},
		},
		{
			ID:       "sharepoint",
			Name:     "SharePoint",
			Provider: "microsoft",
			Category: "documents",
			AuthType: AuthTypeOAuth2,
			ConfigSchema: ConfigSchema{
				Type:     "object",
				Required: []string{"site_id", "drive_id"},
				Properties: map[string]PropertySchema{
					"site_id":  {Type: "string", Title: "Site ID"},
					"drive_id": {Type: "string", Title: "Document library drive ID"},
				},
			},
			Endpoints: []EndpointDescriptor{
				{Name: "upload_file", Method: "PUT", Path: "/v1.0/sites/{site_id}/drives/{drive_id}/root:/{path}:/content"},
			},
		},
	}
}
