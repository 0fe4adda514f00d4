package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"deskcore/internal/platform/models"
)

type EndpointRepository struct {
	db *sql.DB
}

func NewEndpointRepository(db *sql.DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

func (r *EndpointRepository) Create(endpoint *models.WebhookEndpoint) error {
	endpoint.ID = "ep_" + uuid.New().String()
	endpoint.CreatedAt = time.Now().Unix()
	endpoint.UpdatedAt = endpoint.CreatedAt

	eventsJSON, err := json.Marshal(endpoint.Events)
	if err != nil {
		return err
	}
	policyJSON, err := json.Marshal(endpoint.RetryPolicy)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhook_endpoints (id, firm_id, url, description, events, secret, retry_policy, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, endpoint.ID, endpoint.FirmID, endpoint.URL, endpoint.Description,
		string(eventsJSON), endpoint.Secret, string(policyJSON), endpoint.IsActive,
		endpoint.CreatedAt, endpoint.UpdatedAt)
	return err
}

const endpointColumns = `id, firm_id, url, description, events, secret, retry_policy, is_active, last_delivery_at, last_error, created_at, updated_at`

func scanEndpoint(row interface{ Scan(...interface{}) error }) (*models.WebhookEndpoint, error) {
	var e models.WebhookEndpoint
	var eventsStr, policyStr string
	var lastDeliveryAt sql.NullInt64
	var lastError sql.NullString

	err := row.Scan(&e.ID, &e.FirmID, &e.URL, &e.Description, &eventsStr, &e.Secret,
		&policyStr, &e.IsActive, &lastDeliveryAt, &lastError, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastDeliveryAt.Valid {
		e.LastDeliveryAt = lastDeliveryAt.Int64
	}
	if lastError.Valid {
		e.LastError = lastError.String
	}
	json.Unmarshal([]byte(eventsStr), &e.Events)
	json.Unmarshal([]byte(policyStr), &e.RetryPolicy)

	return &e, nil
}

func (r *EndpointRepository) GetByID(firmID, id string) (*models.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints WHERE id = ? AND firm_id = ?`
	return scanEndpoint(r.db.QueryRow(query, id, firmID))
}

func (r *EndpointRepository) ListByFirm(firmID string) ([]*models.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints WHERE firm_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []*models.WebhookEndpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, nil
}

// ListSubscribed returns the firm's active endpoints subscribed to the
// event type. Subscriptions are a JSON array column, so matching
// happens in application code; endpoint counts per firm are small.
func (r *EndpointRepository) ListSubscribed(firmID, eventType string) ([]*models.WebhookEndpoint, error) {
	query := `SELECT ` + endpointColumns + ` FROM webhook_endpoints WHERE firm_id = ? AND is_active = 1`
	rows, err := r.db.Query(query, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []*models.WebhookEndpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		if e.Subscribed(eventType) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (r *EndpointRepository) Update(endpoint *models.WebhookEndpoint) error {
	eventsJSON, err := json.Marshal(endpoint.Events)
	if err != nil {
		return err
	}
	policyJSON, err := json.Marshal(endpoint.RetryPolicy)
	if err != nil {
		return err
	}
	endpoint.UpdatedAt = time.Now().Unix()

	// The secret column is deliberately absent: it is written once at
	// creation and never again.
	query := `
		UPDATE webhook_endpoints
		SET url = ?, description = ?, events = ?, retry_policy = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND firm_id = ?
	`
	_, err = r.db.Exec(query, endpoint.URL, endpoint.Description, string(eventsJSON),
		string(policyJSON), endpoint.IsActive, endpoint.UpdatedAt, endpoint.ID, endpoint.FirmID)
	return err
}

func (r *EndpointRepository) Delete(firmID, id string) error {
	_, err := r.db.Exec(`DELETE FROM webhook_endpoints WHERE id = ? AND firm_id = ?`, id, firmID)
	return err
}

func (r *EndpointRepository) MarkDelivered(id string, at int64) error {
	_, err := r.db.Exec(`UPDATE webhook_endpoints SET last_delivery_at = ?, last_error = NULL WHERE id = ?`, at, id)
	return err
}

func (r *EndpointRepository) MarkFailed(id, message string) error {
	_, err := r.db.Exec(`UPDATE webhook_endpoints SET last_error = ? WHERE id = ?`, message, id)
	return err
}
