package events

// Category groups related domain event types for subscription UIs.
type Category string

const (
	CategoryClients     Category = "clients"
	CategoryEngagements Category = "engagements"
	CategoryDocuments   Category = "documents"
	CategoryUsers       Category = "users"
	CategoryProjects    Category = "projects"
	CategoryFinancial   Category = "financial"
	CategoryAlerts      Category = "alerts"
)

const (
	ClientCreated  = "client.created"
	ClientUpdated  = "client.updated"
	ClientDeleted  = "client.deleted"

	EngagementCreated       = "engagement.created"
	EngagementStatusChanged = "engagement.status_changed"
	EngagementCompleted     = "engagement.completed"

	DocumentCreated = "document.created"
	DocumentFiled   = "document.filed"
	DocumentShared  = "document.shared"

	UserCreated     = "user.created"
	UserRoleChanged = "user.role_changed"

	ProjectCreated   = "project.created"
	ProjectCompleted = "project.completed"
	TaskCompleted    = "task.completed"

	InvoiceCreated  = "invoice.created"
	PaymentReceived = "payment.received"

	DeadlineApproaching = "deadline.approaching"
	HealthScoreChanged  = "health_score.changed"
	KPIAlertTriggered   = "kpi_alert.triggered"
)

var categories = map[string]Category{
	ClientCreated: CategoryClients,
	ClientUpdated: CategoryClients,
	ClientDeleted: CategoryClients,

	EngagementCreated:       CategoryEngagements,
	EngagementStatusChanged: CategoryEngagements,
	EngagementCompleted:     CategoryEngagements,

	DocumentCreated: CategoryDocuments,
	DocumentFiled:   CategoryDocuments,
	DocumentShared:  CategoryDocuments,

	UserCreated:     CategoryUsers,
	UserRoleChanged: CategoryUsers,

	ProjectCreated:   CategoryProjects,
	ProjectCompleted: CategoryProjects,
	TaskCompleted:    CategoryProjects,

	InvoiceCreated:  CategoryFinancial,
	PaymentReceived: CategoryFinancial,

	DeadlineApproaching: CategoryAlerts,
	HealthScoreChanged:  CategoryAlerts,
	KPIAlertTriggered:   CategoryAlerts,
}

// ordering for All(); map iteration order is not stable.
var all = []string{
	ClientCreated, ClientUpdated, ClientDeleted,
	EngagementCreated, EngagementStatusChanged, EngagementCompleted,
	DocumentCreated, DocumentFiled, DocumentShared,
	UserCreated, UserRoleChanged,
	ProjectCreated, ProjectCompleted, TaskCompleted,
	InvoiceCreated, PaymentReceived,
	DeadlineApproaching, HealthScoreChanged, KPIAlertTriggered,
}

// IsValid reports whether eventType is one of the enumerated names.
func IsValid(eventType string) bool {
	_, ok := categories[eventType]
	return ok
}

// CategoryOf returns the category an event type belongs to.
func CategoryOf(eventType string) (Category, bool) {
	c, ok := categories[eventType]
	return c, ok
}

// All returns every event type in catalog order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// ByCategory returns the event types grouped for subscription forms.
func ByCategory() map[Category][]string {
	grouped := make(map[Category][]string)
	for _, ev := range all {
		c := categories[ev]
		grouped[c] = append(grouped[c], ev)
	}
	return grouped
}
