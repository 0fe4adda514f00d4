package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"deskcore/internal/platform/models"
)

type IntegrationRepository struct {
	db *sql.DB
}

func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

func (r *IntegrationRepository) Create(integration *models.TenantIntegration) error {
	integration.ID = "int_" + uuid.New().String()
	integration.CreatedAt = time.Now().Unix()
	integration.UpdatedAt = integration.CreatedAt

	configJSON, err := json.Marshal(integration.Config)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tenant_integrations (id, firm_id, template_id, config, encrypted_credentials, status, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, integration.ID, integration.FirmID, integration.TemplateID,
		string(configJSON), integration.EncryptedCredentials, integration.Status,
		integration.IsActive, integration.CreatedAt, integration.UpdatedAt)
	return err
}

const integrationColumns = `id, firm_id, template_id, config, encrypted_credentials, status, is_active, last_error, created_at, updated_at`

func scanIntegration(row interface{ Scan(...interface{}) error }) (*models.TenantIntegration, error) {
	var i models.TenantIntegration
	var configStr string
	var lastError sql.NullString

	err := row.Scan(&i.ID, &i.FirmID, &i.TemplateID, &configStr, &i.EncryptedCredentials,
		&i.Status, &i.IsActive, &lastError, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if lastError.Valid {
		i.LastError = lastError.String
	}
	json.Unmarshal([]byte(configStr), &i.Config)

	return &i, nil
}

func (r *IntegrationRepository) GetByID(firmID, id string) (*models.TenantIntegration, error) {
	query := `SELECT ` + integrationColumns + ` FROM tenant_integrations WHERE id = ? AND firm_id = ?`
	return scanIntegration(r.db.QueryRow(query, id, firmID))
}

func (r *IntegrationRepository) ListByFirm(firmID string) ([]*models.TenantIntegration, error) {
	query := `SELECT ` + integrationColumns + ` FROM tenant_integrations WHERE firm_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []*models.TenantIntegration
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, i)
	}
	return integrations, nil
}

func (r *IntegrationRepository) UpdateStatus(firmID, id, status, lastError string) error {
	_, err := r.db.Exec(`UPDATE tenant_integrations SET status = ?, last_error = ?, updated_at = ? WHERE id = ? AND firm_id = ?`,
		status, lastError, time.Now().Unix(), id, firmID)
	return err
}

func (r *IntegrationRepository) SetActive(firmID, id string, active bool) error {
	_, err := r.db.Exec(`UPDATE tenant_integrations SET is_active = ?, updated_at = ? WHERE id = ? AND firm_id = ?`,
		active, time.Now().Unix(), id, firmID)
	return err
}

func (r *IntegrationRepository) Delete(firmID, id string) error {
	_, err := r.db.Exec(`DELETE FROM tenant_integrations WHERE id = ? AND firm_id = ?`, id, firmID)
	return err
}
