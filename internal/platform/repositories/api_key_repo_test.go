package repositories

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"deskcore/internal/platform/models"
)

func TestAPIKeyRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	mock.ExpectExec("INSERT INTO api_keys").
		WillReturnResult(sqlmock.NewResult(1, 1))

	key := &models.APIKey{
		FirmID:      "firm_1",
		UserID:      "user_1",
		Name:        "CI pipeline",
		KeyHash:     "abc123",
		KeyPrefix:   "dc_12345678",
		Permissions: []string{"events:publish"},
		RateLimit:   1000,
	}
	if err := repo.Create(key); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if key.ID == "" || key.ID[:4] != "key_" {
		t.Errorf("Create must assign a key_ id, got %q", key.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestAPIKeyRepositoryGetByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	rows := sqlmock.NewRows([]string{"id", "firm_id", "user_id", "name", "key_prefix", "permissions", "rate_limit", "created_at", "expires_at", "revoked_at"}).
		AddRow("key_1", "firm_1", "user_1", "CI pipeline", "dc_12345678", `["events:publish","webhooks:read"]`, 1000, int64(1700000000), nil, int64(1700000500))

	mock.ExpectQuery("SELECT (.+) FROM api_keys WHERE key_hash").
		WithArgs("abc123").
		WillReturnRows(rows)

	key, err := repo.GetByHash("abc123")
	if err != nil {
		t.Fatalf("GetByHash failed: %v", err)
	}
	if len(key.Permissions) != 2 {
		t.Errorf("Permissions JSON column not decoded: %v", key.Permissions)
	}
	if key.ExpiresAt != nil {
		t.Error("NULL expires_at must scan to nil")
	}
	// Revoked keys are still returned; the authorizer rejects them so
	// the caller cannot distinguish revoked from unknown.
	if key.RevokedAt == nil || *key.RevokedAt != 1700000500 {
		t.Errorf("revoked_at not scanned: %v", key.RevokedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestAPIKeyRepositoryRevoke(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	repo := NewAPIKeyRepository(db)

	mock.ExpectExec("UPDATE api_keys SET revoked_at").
		WithArgs(sqlmock.AnyArg(), "key_1", "firm_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Revoke("firm_1", "key_1"); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
