package apikeys

import (
	"sync"
	"testing"
)

func TestLimiterStoreAllow(t *testing.T) {
	s := NewLimiterStore(60)

	for i := 0; i < 5; i++ {
		if status := s.Allow("key_1", 5); !status.Allowed {
			t.Fatalf("Request %d unexpectedly denied", i+1)
		}
	}

	if status := s.Allow("key_1", 5); status.Allowed {
		t.Error("Sixth request should be denied")
	}

	// A different key has its own window
	if status := s.Allow("key_2", 5); !status.Allowed {
		t.Error("Fresh key should be allowed")
	}
}

func TestLimiterStoreRemaining(t *testing.T) {
	s := NewLimiterStore(60)

	status := s.Allow("key_1", 10)
	if status.Remaining != 9 {
		t.Errorf("Remaining = %d, want 9", status.Remaining)
	}
	if s.Usage("key_1") != 1 {
		t.Errorf("Usage = %d, want 1", s.Usage("key_1"))
	}
	if s.Usage("unknown") != 0 {
		t.Error("Unknown key should report zero usage")
	}
}

// A race must never let concurrent requests exceed the limit.
func TestLimiterStoreConcurrent(t *testing.T) {
	s := NewLimiterStore(60)
	const limit = 100
	const workers = 20
	const perWorker = 50

	var allowed int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := int64(0)
			for i := 0; i < perWorker; i++ {
				if s.Allow("shared", limit).Allowed {
					local++
				}
			}
			mu.Lock()
			allowed += local
			mu.Unlock()
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("Allowed %d requests, want exactly %d", allowed, limit)
	}
}
