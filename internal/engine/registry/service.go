package registry

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"deskcore/internal/engine/events"
	"deskcore/internal/platform/models"
)

var ErrEndpointNotFound = errors.New("registry: endpoint not found")

// EndpointStore is the persistence surface the registry needs.
type EndpointStore interface {
	Create(endpoint *models.WebhookEndpoint) error
	GetByID(firmID, id string) (*models.WebhookEndpoint, error)
	ListByFirm(firmID string) ([]*models.WebhookEndpoint, error)
	ListSubscribed(firmID, eventType string) ([]*models.WebhookEndpoint, error)
	Update(endpoint *models.WebhookEndpoint) error
	Delete(firmID, id string) error
}

// Canceller drops pending retries for an endpoint; implemented by the
// delivery scheduler.
type Canceller interface {
	CancelEndpoint(endpointID string)
}

// Service owns webhook endpoint records: validated URLs, generated
// secrets, subscriptions, retry policies.
type Service struct {
	store     EndpointStore
	canceller Canceller
}

func NewService(store EndpointStore, canceller Canceller) *Service {
	return &Service{store: store, canceller: canceller}
}

type CreateInput struct {
	URL         string             `json:"url"`
	Description string             `json:"description"`
	Events      []string           `json:"events"`
	RetryPolicy *models.RetryPolicy `json:"retry_policy,omitempty"`
}

type UpdateInput struct {
	URL         *string   `json:"url,omitempty"`
	Description *string   `json:"description,omitempty"`
	Events      []string  `json:"events,omitempty"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

// Create validates and persists a new endpoint. The generated secret is
// present on the returned record exactly once; it is never re-issued.
func (s *Service) Create(firmID string, input CreateInput) (*models.WebhookEndpoint, []string) {
	validationErrors := s.validate(input.URL, input.Events, true)
	if len(validationErrors) > 0 {
		return nil, validationErrors
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, []string{"failed to generate endpoint secret"}
	}

	policy := models.DefaultRetryPolicy()
	if input.RetryPolicy != nil {
		policy = *input.RetryPolicy
	}

	endpoint := &models.WebhookEndpoint{
		FirmID:      firmID,
		URL:         input.URL,
		Description: input.Description,
		Events:      input.Events,
		Secret:      secret,
		RetryPolicy: policy,
		IsActive:    true,
	}

	if err := s.store.Create(endpoint); err != nil {
		return nil, []string{"failed to store endpoint"}
	}
	return endpoint, nil
}

// Update applies partial changes. The secret is immutable and cannot be
// touched here. Deactivating an endpoint drops its pending retries.
func (s *Service) Update(firmID, id string, input UpdateInput) (*models.WebhookEndpoint, []string, error) {
	endpoint, err := s.store.GetByID(firmID, id)
	if err != nil {
		return nil, nil, ErrEndpointNotFound
	}

	if input.URL != nil {
		if err := ValidateURL(*input.URL); err != nil {
			return nil, []string{err.Error()}, nil
		}
		endpoint.URL = *input.URL
	}
	if input.Description != nil {
		endpoint.Description = *input.Description
	}
	if len(input.Events) > 0 {
		if errs := validateEvents(input.Events); len(errs) > 0 {
			return nil, errs, nil
		}
		endpoint.Events = input.Events
	}
	if input.IsActive != nil {
		endpoint.IsActive = *input.IsActive
		if !endpoint.IsActive && s.canceller != nil {
			s.canceller.CancelEndpoint(endpoint.ID)
		}
	}
	endpoint.UpdatedAt = time.Now().Unix()

	if err := s.store.Update(endpoint); err != nil {
		return nil, nil, err
	}
	return endpoint, nil, nil
}

func (s *Service) Get(firmID, id string) (*models.WebhookEndpoint, error) {
	endpoint, err := s.store.GetByID(firmID, id)
	if err != nil {
		return nil, ErrEndpointNotFound
	}
	return endpoint, nil
}

func (s *Service) List(firmID string) ([]*models.WebhookEndpoint, error) {
	return s.store.ListByFirm(firmID)
}

// Delete removes the endpoint and drops any scheduled retries for it.
func (s *Service) Delete(firmID, id string) error {
	if _, err := s.store.GetByID(firmID, id); err != nil {
		return ErrEndpointNotFound
	}
	if err := s.store.Delete(firmID, id); err != nil {
		return err
	}
	if s.canceller != nil {
		s.canceller.CancelEndpoint(id)
	}
	return nil
}

// Resolve returns the active endpoints subscribed to eventType for the
// firm. Used by the delivery scheduler.
func (s *Service) Resolve(firmID, eventType string) ([]*models.WebhookEndpoint, error) {
	return s.store.ListSubscribed(firmID, eventType)
}

func (s *Service) validate(rawURL string, eventTypes []string, required bool) []string {
	var errs []string
	if err := ValidateURL(rawURL); err != nil {
		errs = append(errs, err.Error())
	}
	if required && len(eventTypes) == 0 {
		errs = append(errs, "at least one event subscription is required")
	}
	errs = append(errs, validateEvents(eventTypes)...)
	return errs
}

func validateEvents(eventTypes []string) []string {
	var errs []string
	for _, ev := range eventTypes {
		if !events.IsValid(ev) {
			errs = append(errs, fmt.Sprintf("unknown event type: %s", ev))
		}
	}
	return errs
}

func generateSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(raw), nil
}
