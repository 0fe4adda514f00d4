package apikeys

import (
	"errors"
	"testing"
	"time"

	"deskcore/internal/platform/models"
)

type stubKeyStore struct {
	keys map[string]*models.APIKey
}

func (s *stubKeyStore) GetByHash(hash string) (*models.APIKey, error) {
	key, ok := s.keys[hash]
	if !ok {
		return nil, errors.New("not found")
	}
	return key, nil
}

func setupAuthorizer(t *testing.T, key *models.APIKey) (*Authorizer, *GeneratedKey) {
	t.Helper()

	gen, err := Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	key.KeyHash = gen.Hash
	key.KeyPrefix = gen.Prefix

	store := &stubKeyStore{keys: map[string]*models.APIKey{gen.Hash: key}}
	return NewAuthorizer(store, NewLimiterStore(60)), gen
}

func TestAuthorizeSuccess(t *testing.T) {
	auth, gen := setupAuthorizer(t, &models.APIKey{
		ID:          "key_1",
		FirmID:      "firm_1",
		Permissions: []string{"events:publish"},
		RateLimit:   10,
	})

	key, err := auth.Authorize(gen.FullKey, "events:publish")
	if err != nil {
		t.Fatalf("Authorize() failed: %v", err)
	}
	if key.FirmID != "firm_1" {
		t.Errorf("FirmID = %s, want firm_1", key.FirmID)
	}
}

func TestAuthorizeBadFormat(t *testing.T) {
	auth, _ := setupAuthorizer(t, &models.APIKey{ID: "key_1", Permissions: []string{"*"}, RateLimit: 10})

	if _, err := auth.Authorize("not-a-key", "events:publish"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorizeUnknownKey(t *testing.T) {
	auth, _ := setupAuthorizer(t, &models.APIKey{ID: "key_1", Permissions: []string{"*"}, RateLimit: 10})

	other, _ := Generate()
	if _, err := auth.Authorize(other.FullKey, "events:publish"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthorizeRevoked(t *testing.T) {
	revokedAt := time.Now().Unix()
	auth, gen := setupAuthorizer(t, &models.APIKey{
		ID:          "key_1",
		Permissions: []string{"*"},
		RateLimit:   10,
		RevokedAt:   &revokedAt,
	})

	if _, err := auth.Authorize(gen.FullKey, "events:publish"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for revoked key, got %v", err)
	}
}

func TestAuthorizeExpired(t *testing.T) {
	expired := time.Now().Add(-time.Minute).Unix()
	auth, gen := setupAuthorizer(t, &models.APIKey{
		ID:          "key_1",
		Permissions: []string{"*"},
		RateLimit:   10,
		ExpiresAt:   &expired,
	})

	if _, err := auth.Authorize(gen.FullKey, "events:publish"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for expired key, got %v", err)
	}
}

func TestAuthorizeRateLimited(t *testing.T) {
	auth, gen := setupAuthorizer(t, &models.APIKey{
		ID:          "key_1",
		Permissions: []string{"*"},
		RateLimit:   2,
	})

	for i := 0; i < 2; i++ {
		if _, err := auth.Authorize(gen.FullKey, "events:publish"); err != nil {
			t.Fatalf("Request %d unexpectedly failed: %v", i+1, err)
		}
	}

	if _, err := auth.Authorize(gen.FullKey, "events:publish"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized once over the limit, got %v", err)
	}
}

func TestAuthorizeMissingPermission(t *testing.T) {
	auth, gen := setupAuthorizer(t, &models.APIKey{
		ID:          "key_1",
		Permissions: []string{"documents:read"},
		RateLimit:   10,
	})

	if _, err := auth.Authorize(gen.FullKey, "documents:delete"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for missing permission, got %v", err)
	}
}

// Rate limit is checked before permission, so an under-permissioned
// request still consumes from the window.
func TestAuthorizeOrderRateLimitBeforePermission(t *testing.T) {
	auth, gen := setupAuthorizer(t, &models.APIKey{
		ID:          "key_1",
		Permissions: []string{"documents:read"},
		RateLimit:   1,
	})

	auth.Authorize(gen.FullKey, "documents:delete")

	if _, err := auth.Authorize(gen.FullKey, "documents:read"); !errors.Is(err, ErrUnauthorized) {
		t.Error("Window should have been consumed by the denied request")
	}
}
