package delivery

import (
	"testing"
	"time"

	"deskcore/internal/platform/models"
)

func TestRetryDelayDefaults(t *testing.T) {
	policy := models.DefaultRetryPolicy()

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
	}
	for i, expected := range want {
		if got := RetryDelay(policy, i); got != expected {
			t.Errorf("RetryDelay(%d) = %v, want %v", i, got, expected)
		}
	}

	// Attempt 6 would be 64s; capped at max.
	if got := RetryDelay(policy, 6); got != 60*time.Second {
		t.Errorf("RetryDelay(6) = %v, want 60s cap", got)
	}
}

func TestRetryDelayNonDecreasing(t *testing.T) {
	policy := models.RetryPolicy{
		MaxRetries:        10,
		InitialDelayMs:    250,
		MaxDelayMs:        30000,
		BackoffMultiplier: 1.7,
	}

	prev := time.Duration(0)
	for i := 0; i < 20; i++ {
		d := RetryDelay(policy, i)
		if d < prev {
			t.Fatalf("Delay decreased at attempt %d: %v < %v", i, d, prev)
		}
		if d > time.Duration(policy.MaxDelayMs)*time.Millisecond {
			t.Fatalf("Delay %v exceeds max at attempt %d", d, i)
		}
		prev = d
	}
}

func TestRetryDelayNegativeIndex(t *testing.T) {
	policy := models.DefaultRetryPolicy()
	if got := RetryDelay(policy, -3); got != time.Second {
		t.Errorf("RetryDelay(-3) = %v, want initial delay", got)
	}
}
