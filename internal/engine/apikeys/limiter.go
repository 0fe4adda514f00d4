package apikeys

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// LimiterStore holds windowed usage counters per key. The check and the
// increment happen under one lock so concurrent requests can never push
// a key past its limit.
type LimiterStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	windowLen time.Duration
}

func NewLimiterStore(windowMinutes int) *LimiterStore {
	if windowMinutes <= 0 {
		windowMinutes = 60
	}

	s := &LimiterStore{
		windows:   make(map[string]*window),
		windowLen: time.Duration(windowMinutes) * time.Minute,
	}

	go s.cleanupLoop()

	return s
}

// Allow consumes one request from the key's window if the limit permits.
func (s *LimiterStore) Allow(keyID string, limit int) RateLimitStatus {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[keyID]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(s.windowLen)}
		s.windows[keyID] = w
	}

	if w.count >= limit {
		return RateLimitStatus{Allowed: false, Remaining: 0, ResetAt: w.resetAt.Unix()}
	}

	w.count++
	return RateLimitStatus{Allowed: true, Remaining: limit - w.count, ResetAt: w.resetAt.Unix()}
}

// Usage returns the current window's consumed count.
func (s *LimiterStore) Usage(keyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[keyID]
	if !ok || time.Now().After(w.resetAt) {
		return 0
	}
	return w.count
}

func (s *LimiterStore) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for key, w := range s.windows {
			if now.After(w.resetAt) {
				delete(s.windows, key)
			}
		}
		s.mu.Unlock()
	}
}
