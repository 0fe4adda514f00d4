package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"deskcore/internal/engine/events"
	"deskcore/internal/engine/signature"
	"deskcore/internal/pkg/metrics"
	"deskcore/internal/platform/models"
)

// Delivery states for one (endpoint, event) pair.
const (
	StatePending        = "PENDING"
	StateAttempting     = "ATTEMPTING"
	StateDelivered      = "DELIVERED"
	StateRetryScheduled = "RETRY_SCHEDULED"
	StateExhausted      = "EXHAUSTED"
)

const maxStoredResponseBody = 1024

var ErrUnknownEventType = errors.New("delivery: unknown event type")

// EndpointResolver returns the active endpoints subscribed to an event
// type for a firm.
type EndpointResolver interface {
	Resolve(firmID, eventType string) ([]*models.WebhookEndpoint, error)
}

// AttemptRecorder persists one delivery attempt.
type AttemptRecorder interface {
	Record(attempt *models.DeliveryAttempt) error
}

// EndpointMarker updates endpoint delivery bookkeeping.
type EndpointMarker interface {
	MarkDelivered(endpointID string, at int64) error
	MarkFailed(endpointID, message string) error
}

// Scheduler delivers events to subscribed endpoints. Pairs run
// concurrently; within a pair, attempts are strictly sequential and
// retries wait on a timer, never a blocking sleep. Pending retries for
// an endpoint can be cancelled at any time.
type Scheduler struct {
	resolver EndpointResolver
	attempts AttemptRecorder
	marker   EndpointMarker
	client   *http.Client
	sem      *semaphore.Weighted

	mu      sync.Mutex
	pending map[string]*time.Timer // pair key -> retry timer
	closed  bool

	wg sync.WaitGroup
}

type Option func(*Scheduler)

// WithHTTPClient replaces the delivery client; used by tests and by
// callers that need a custom timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scheduler) { s.client = client }
}

// WithMaxConcurrent caps simultaneous in-flight deliveries.
func WithMaxConcurrent(n int64) Option {
	return func(s *Scheduler) { s.sem = semaphore.NewWeighted(n) }
}

// WithEndpointMarker wires endpoint last-delivery/last-error updates.
func WithEndpointMarker(marker EndpointMarker) Option {
	return func(s *Scheduler) { s.marker = marker }
}

func NewScheduler(resolver EndpointResolver, attempts AttemptRecorder, opts ...Option) *Scheduler {
	s := &Scheduler{
		resolver: resolver,
		attempts: attempts,
		client:   &http.Client{Timeout: 10 * time.Second},
		sem:      semaphore.NewWeighted(32),
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish fans an event out to every subscribed endpoint. Delivery is
// at-least-once per endpoint with no cross-endpoint ordering.
func (s *Scheduler) Publish(event *models.WebhookEvent) error {
	if !events.IsValid(event.Event) {
		return ErrUnknownEventType
	}

	endpoints, err := s.resolver.Resolve(event.FirmID, event.Event)
	if err != nil {
		return err
	}

	for _, endpoint := range endpoints {
		s.wg.Add(1)
		go func(ep *models.WebhookEndpoint) {
			defer s.wg.Done()
			s.attempt(ep, event, 0)
		}(endpoint)
	}
	return nil
}

// CancelEndpoint drops every scheduled retry for the endpoint. Called
// when an endpoint is deactivated or deleted.
func (s *Scheduler) CancelEndpoint(endpointID string) {
	prefix := endpointID + "/"

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, timer := range s.pending {
		if strings.HasPrefix(key, prefix) {
			// Stop() true means the callback never runs; balance its
			// wg.Add here. If it already fired it finds the key gone
			// and drops itself.
			if timer.Stop() {
				s.wg.Done()
			}
			delete(s.pending, key)
		}
	}
}

// Shutdown stops all pending retries and waits for in-flight attempts.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for key, timer := range s.pending {
		if timer.Stop() {
			s.wg.Done()
		}
		delete(s.pending, key)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pairKey(endpointID, eventID string) string {
	return endpointID + "/" + eventID
}

// attempt runs one delivery attempt and either finishes the pair or
// schedules the next attempt. attemptIndex is 0-based.
func (s *Scheduler) attempt(endpoint *models.WebhookEndpoint, event *models.WebhookEvent, attemptIndex int) {
	if err := s.sem.Acquire(context.Background(), 1); err != nil {
		return
	}
	result := s.send(endpoint, event)
	s.sem.Release(1)

	s.record(endpoint, event, attemptIndex, result)

	if result.Success {
		metrics.DeliveriesTotal.WithLabelValues("delivered").Inc()
		if s.marker != nil {
			s.marker.MarkDelivered(endpoint.ID, time.Now().Unix())
		}
		log.Debug().
			Str("endpoint_id", endpoint.ID).
			Str("event_id", event.ID).
			Int("attempt", attemptIndex+1).
			Str("state", StateDelivered).
			Msg("webhook delivered")
		return
	}

	metrics.DeliveriesTotal.WithLabelValues("failed").Inc()

	if attemptIndex >= endpoint.RetryPolicy.MaxRetries {
		s.exhaust(endpoint, event, attemptIndex, result)
		return
	}

	s.scheduleRetry(endpoint, event, attemptIndex)
}

// send performs the HTTP POST and returns a typed result. Failure here
// is routine, not exceptional; errors surface as result values.
func (s *Scheduler) send(endpoint *models.WebhookEndpoint, event *models.WebhookEvent) models.DeliveryAttempt {
	start := time.Now()
	result := models.DeliveryAttempt{}

	body, err := buildPayload(event)
	if err != nil {
		result.ErrorMessage = "failed to encode payload"
		return result
	}

	sig := signature.Sign(endpoint.Secret, body)

	req, err := http.NewRequest(http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		result.ErrorMessage = "failed to build request"
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Deskcore-Signature", sig)
	req.Header.Set("X-Deskcore-Event", event.Event)
	req.Header.Set("X-Deskcore-Delivery", event.ID)

	resp, err := s.client.Do(req)
	result.DurationMs = time.Since(start).Milliseconds()
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxStoredResponseBody))
	result.ResponseBody = string(respBody)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result.Success = true
	} else {
		result.ErrorMessage = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return result
}

func (s *Scheduler) scheduleRetry(endpoint *models.WebhookEndpoint, event *models.WebhookEvent, attemptIndex int) {
	delay := RetryDelay(endpoint.RetryPolicy, attemptIndex)
	key := pairKey(endpoint.ID, event.ID)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	timer := time.AfterFunc(delay, func() {
		defer s.wg.Done()

		s.mu.Lock()
		_, live := s.pending[key]
		delete(s.pending, key)
		s.mu.Unlock()

		// A cancelled timer that already fired must not deliver.
		if !live {
			return
		}
		s.attempt(endpoint, event, attemptIndex+1)
	})
	s.pending[key] = timer
	s.mu.Unlock()

	metrics.RetriesScheduled.Inc()
	log.Info().
		Str("endpoint_id", endpoint.ID).
		Str("event_id", event.ID).
		Int("attempt", attemptIndex+1).
		Dur("retry_in", delay).
		Str("state", StateRetryScheduled).
		Msg("webhook delivery failed, retry scheduled")
}

// exhaust finishes a pair that failed every allowed attempt. The
// condition is surfaced through attempt records, the endpoint's
// last_error, a metric, and a log line.
func (s *Scheduler) exhaust(endpoint *models.WebhookEndpoint, event *models.WebhookEvent, attemptIndex int, result models.DeliveryAttempt) {
	metrics.DeliveriesExhausted.Inc()
	if s.marker != nil {
		s.marker.MarkFailed(endpoint.ID, fmt.Sprintf("delivery of %s exhausted after %d attempts: %s", event.ID, attemptIndex+1, result.ErrorMessage))
	}
	log.Error().
		Str("endpoint_id", endpoint.ID).
		Str("event_id", event.ID).
		Str("event_type", event.Event).
		Int("attempts", attemptIndex+1).
		Str("last_error", result.ErrorMessage).
		Str("state", StateExhausted).
		Msg("webhook delivery exhausted")
}

func (s *Scheduler) record(endpoint *models.WebhookEndpoint, event *models.WebhookEvent, attemptIndex int, result models.DeliveryAttempt) {
	attempt := &models.DeliveryAttempt{
		EndpointID:    endpoint.ID,
		EventID:       event.ID,
		EventType:     event.Event,
		AttemptNumber: attemptIndex + 1,
		RequestedAt:   time.Now().Unix(),
		Success:       result.Success,
		StatusCode:    result.StatusCode,
		ResponseBody:  result.ResponseBody,
		ErrorMessage:  result.ErrorMessage,
		DurationMs:    result.DurationMs,
	}

	if err := s.attempts.Record(attempt); err != nil {
		log.Error().Err(err).Str("endpoint_id", endpoint.ID).Msg("failed to record delivery attempt")
	}
}
