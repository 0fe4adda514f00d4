package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"deskcore/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
	}
	key.CreatedAt = time.Now().Unix()

	permissionsJSON, err := json.Marshal(key.Permissions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO api_keys (id, firm_id, user_id, name, key_hash, key_prefix, permissions, rate_limit, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, key.ID, key.FirmID, key.UserID, key.Name, key.KeyHash,
		key.KeyPrefix, string(permissionsJSON), key.RateLimit, key.CreatedAt, key.ExpiresAt)
	return err
}

func (r *APIKeyRepository) GetByHash(hash string) (*models.APIKey, error) {
	query := `
		SELECT id, firm_id, user_id, name, key_prefix, permissions, rate_limit, created_at, expires_at, revoked_at
		FROM api_keys WHERE key_hash = ?
	`
	row := r.db.QueryRow(query, hash)

	var k models.APIKey
	var permissionsStr string
	var expiresAt, revokedAt sql.NullInt64

	err := row.Scan(&k.ID, &k.FirmID, &k.UserID, &k.Name, &k.KeyPrefix, &permissionsStr,
		&k.RateLimit, &k.CreatedAt, &expiresAt, &revokedAt)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Int64
	}
	if revokedAt.Valid {
		k.RevokedAt = &revokedAt.Int64
	}
	json.Unmarshal([]byte(permissionsStr), &k.Permissions)
	k.KeyHash = hash

	return &k, nil
}

func (r *APIKeyRepository) ListByFirm(firmID string) ([]*models.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_prefix, permissions, rate_limit, created_at, expires_at, revoked_at
		FROM api_keys WHERE firm_id = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		var permissionsStr string
		var expiresAt, revokedAt sql.NullInt64

		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyPrefix, &permissionsStr,
			&k.RateLimit, &k.CreatedAt, &expiresAt, &revokedAt); err != nil {
			return nil, err
		}

		if expiresAt.Valid {
			k.ExpiresAt = &expiresAt.Int64
		}
		if revokedAt.Valid {
			k.RevokedAt = &revokedAt.Int64
		}
		json.Unmarshal([]byte(permissionsStr), &k.Permissions)
		k.FirmID = firmID
		keys = append(keys, &k)
	}
	return keys, nil
}

func (r *APIKeyRepository) Revoke(firmID, id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET revoked_at = ? WHERE id = ? AND firm_id = ?`, time.Now().Unix(), id, firmID)
	return err
}

func (r *APIKeyRepository) UpdateLastUsed(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}
