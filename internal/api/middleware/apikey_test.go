package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/apikeys"
	"deskcore/internal/platform/models"
)

type stubKeyStore struct {
	keys map[string]*models.APIKey
}

func (s *stubKeyStore) GetByHash(hash string) (*models.APIKey, error) {
	return s.keys[hash], nil
}

type stubUsage struct {
	mu  sync.Mutex
	ids []string
}

func (s *stubUsage) UpdateLastUsed(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}

func newTestMiddleware(t *testing.T) (*APIKeyMiddleware, string) {
	t.Helper()
	generated, err := apikeys.Generate()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	store := &stubKeyStore{keys: map[string]*models.APIKey{
		generated.Hash: {
			ID:          "key_1",
			FirmID:      "firm_1",
			Permissions: []string{"events:publish"},
			RateLimit:   100,
		},
	}}
	authorizer := apikeys.NewAuthorizer(store, apikeys.NewLimiterStore(60))
	return NewAPIKeyMiddleware(authorizer, &stubUsage{}), generated.FullKey
}

func TestRequireKeyAcceptsValidKey(t *testing.T) {
	mid, fullKey := newTestMiddleware(t)

	var gotKey *models.APIKey
	handler := mid.RequireKey("events:publish")(func(w http.ResponseWriter, r *http.Request) {
		gotKey, _ = r.Context().Value(apiContext.APIKey).(*models.APIKey)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	req.Header.Set("X-API-Key", fullKey)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if gotKey == nil || gotKey.FirmID != "firm_1" {
		t.Error("Validated key not placed in request context")
	}
}

func TestRequireKeyAcceptsBearerHeader(t *testing.T) {
	mid, fullKey := newTestMiddleware(t)

	handler := mid.RequireKey("events:publish")(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	req.Header.Set("Authorization", "Bearer "+fullKey)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
}

func TestRequireKeyGeneric401(t *testing.T) {
	mid, fullKey := newTestMiddleware(t)

	handler := mid.RequireKey("webhooks:write")(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not run for rejected requests")
	})

	// Missing key, malformed key, unknown key, and a valid key lacking
	// the permission must all produce the same response body.
	cases := map[string]string{
		"missing":            "",
		"malformed":          "not-a-key",
		"unknown":            "dc_0000000000000000000000000000000000000000000000000000000000000000",
		"lacking permission": fullKey,
	}

	var bodies []string
	for name, key := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	for _, body := range bodies[1:] {
		if body != bodies[0] {
			t.Error("Failure responses differ; they must not reveal which check failed")
		}
	}
}
