package delivery

import (
	"math"
	"time"

	"deskcore/internal/platform/models"
)

// RetryDelay computes the backoff before retrying attempt index n
// (0-based): min(initialDelay * multiplier^n, maxDelay). With the
// default policy that is 1s, 2s, 4s, ... capped at 60s.
func RetryDelay(policy models.RetryPolicy, attemptIndex int) time.Duration {
	if attemptIndex < 0 {
		attemptIndex = 0
	}

	delayMs := float64(policy.InitialDelayMs) * math.Pow(policy.BackoffMultiplier, float64(attemptIndex))
	if delayMs > float64(policy.MaxDelayMs) {
		delayMs = float64(policy.MaxDelayMs)
	}

	return time.Duration(delayMs) * time.Millisecond
}
