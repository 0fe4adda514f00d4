package registry

import (
	"errors"
	"strings"
	"testing"

	"deskcore/internal/platform/models"
)

type memStore struct {
	endpoints map[string]*models.WebhookEndpoint
	nextID    int
}

func newMemStore() *memStore {
	return &memStore{endpoints: make(map[string]*models.WebhookEndpoint)}
}

func (m *memStore) Create(e *models.WebhookEndpoint) error {
	m.nextID++
	e.ID = "ep_test"
	m.endpoints[e.ID] = e
	return nil
}

func (m *memStore) GetByID(firmID, id string) (*models.WebhookEndpoint, error) {
	e, ok := m.endpoints[id]
	if !ok || e.FirmID != firmID {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (m *memStore) ListByFirm(firmID string) ([]*models.WebhookEndpoint, error) {
	var out []*models.WebhookEndpoint
	for _, e := range m.endpoints {
		if e.FirmID == firmID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) ListSubscribed(firmID, eventType string) ([]*models.WebhookEndpoint, error) {
	var out []*models.WebhookEndpoint
	for _, e := range m.endpoints {
		if e.FirmID == firmID && e.IsActive && e.Subscribed(eventType) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) Update(e *models.WebhookEndpoint) error {
	m.endpoints[e.ID] = e
	return nil
}

func (m *memStore) Delete(firmID, id string) error {
	delete(m.endpoints, id)
	return nil
}

type recordingCanceller struct {
	cancelled []string
}

func (c *recordingCanceller) CancelEndpoint(id string) {
	c.cancelled = append(c.cancelled, id)
}

func TestCreateEndpoint(t *testing.T) {
	svc := NewService(newMemStore(), nil)

	endpoint, errs := svc.Create("firm_1", CreateInput{
		URL:    "https://api.example.com/hook",
		Events: []string{"client.created", "invoice.created"},
	})
	if len(errs) > 0 {
		t.Fatalf("Create failed: %v", errs)
	}

	if !strings.HasPrefix(endpoint.Secret, "whsec_") {
		t.Errorf("Secret %q missing whsec_ prefix", endpoint.Secret)
	}
	if len(endpoint.Secret) != 6+64 {
		t.Errorf("Secret length = %d, want 70", len(endpoint.Secret))
	}
	if !endpoint.IsActive {
		t.Error("New endpoints should be active")
	}
	if endpoint.RetryPolicy.MaxRetries != 3 {
		t.Errorf("Default MaxRetries = %d, want 3", endpoint.RetryPolicy.MaxRetries)
	}
}

func TestCreateEndpointCollectsValidationErrors(t *testing.T) {
	svc := NewService(newMemStore(), nil)

	_, errs := svc.Create("firm_1", CreateInput{
		URL:    "http://evil.com",
		Events: []string{"client.created", "bogus.event"},
	})
	if len(errs) != 2 {
		t.Fatalf("Expected url + event errors, got %v", errs)
	}
}

func TestCreateEndpointRequiresEvents(t *testing.T) {
	svc := NewService(newMemStore(), nil)

	_, errs := svc.Create("firm_1", CreateInput{URL: "https://api.example.com/hook"})
	if len(errs) == 0 {
		t.Fatal("Expected an error for an empty subscription set")
	}
}

func TestUpdateDoesNotTouchSecret(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	endpoint, _ := svc.Create("firm_1", CreateInput{
		URL:    "https://api.example.com/hook",
		Events: []string{"client.created"},
	})
	originalSecret := endpoint.Secret

	newURL := "https://api.example.com/hook2"
	updated, errs, err := svc.Update("firm_1", endpoint.ID, UpdateInput{URL: &newURL})
	if err != nil || len(errs) > 0 {
		t.Fatalf("Update failed: %v %v", err, errs)
	}
	if updated.Secret != originalSecret {
		t.Error("Update must not re-issue the secret")
	}
	if updated.URL != newURL {
		t.Errorf("URL = %s, want %s", updated.URL, newURL)
	}
}

func TestDeactivateCancelsRetries(t *testing.T) {
	store := newMemStore()
	canceller := &recordingCanceller{}
	svc := NewService(store, canceller)

	endpoint, _ := svc.Create("firm_1", CreateInput{
		URL:    "https://api.example.com/hook",
		Events: []string{"client.created"},
	})

	inactive := false
	if _, _, err := svc.Update("firm_1", endpoint.ID, UpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(canceller.cancelled) != 1 || canceller.cancelled[0] != endpoint.ID {
		t.Errorf("Expected cancellation for %s, got %v", endpoint.ID, canceller.cancelled)
	}
}

func TestDeleteCancelsRetries(t *testing.T) {
	store := newMemStore()
	canceller := &recordingCanceller{}
	svc := NewService(store, canceller)

	endpoint, _ := svc.Create("firm_1", CreateInput{
		URL:    "https://api.example.com/hook",
		Events: []string{"client.created"},
	})

	if err := svc.Delete("firm_1", endpoint.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(canceller.cancelled) != 1 {
		t.Error("Delete should cancel pending retries")
	}
	if _, err := svc.Get("firm_1", endpoint.ID); !errors.Is(err, ErrEndpointNotFound) {
		t.Error("Endpoint should be gone")
	}
}

func TestResolveFiltersByEventAndFirm(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	created, _ := svc.Create("firm_1", CreateInput{
		URL:    "https://api.example.com/hook",
		Events: []string{"client.created"},
	})

	matched, err := svc.Resolve("firm_1", "client.created")
	if err != nil || len(matched) != 1 {
		t.Fatalf("Resolve = %v, %v; want the created endpoint", matched, err)
	}
	if matched[0].ID != created.ID {
		t.Error("Resolved wrong endpoint")
	}

	if matched, _ := svc.Resolve("firm_1", "document.filed"); len(matched) != 0 {
		t.Error("Endpoint subscribed only to client.created must not match document.filed")
	}
	if matched, _ := svc.Resolve("firm_2", "client.created"); len(matched) != 0 {
		t.Error("Other firms must not see this endpoint")
	}
}
