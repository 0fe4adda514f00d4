package apikeys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
)

// LiteralPrefix is the fixed product prefix on every issued key.
const LiteralPrefix = "dc_"

// prefixDisplayLen covers the literal prefix plus 8 hex chars; enough to
// identify a key in lists and audit trails without exposing the secret.
const prefixDisplayLen = 11

var keyFormat = regexp.MustCompile(`^dc_[a-f0-9]{64}$`)

// GeneratedKey carries the only copy of the plaintext key that will ever
// exist. Hand FullKey to the caller once, persist Hash and Prefix only.
type GeneratedKey struct {
	FullKey string
	Prefix  string
	Hash    string
}

func Generate() (*GeneratedKey, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	full := LiteralPrefix + hex.EncodeToString(raw)
	return &GeneratedKey{
		FullKey: full,
		Prefix:  full[:prefixDisplayLen],
		Hash:    HashKey(full),
	}, nil
}

// HashKey is the only persisted form of a key.
func HashKey(fullKey string) string {
	sum := sha256.Sum256([]byte(fullKey))
	return hex.EncodeToString(sum[:])
}

func ValidFormat(key string) bool {
	return keyFormat.MatchString(key)
}

// IsExpired is true iff an expiry is set and has passed.
func IsExpired(expiresAt *int64) bool {
	return expiresAt != nil && *expiresAt < time.Now().Unix()
}

// HasPermission checks a required "resource:action" string against the
// key's permission set. "*" and "*:*" grant everything; "resource:*"
// grants every action on the resource.
func HasPermission(permissions []string, required string) bool {
	resource, _, _ := strings.Cut(required, ":")

	for _, p := range permissions {
		switch p {
		case "*", "*:*", required, resource + ":*":
			return true
		}
	}
	return false
}

// RateLimitStatus is the outcome of a windowed usage check.
type RateLimitStatus struct {
	Allowed   bool  `json:"allowed"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"reset_at"`
}

// CheckRateLimit evaluates a usage count against a per-window limit.
// Pure bookkeeping; the atomic check-and-increment lives in LimiterStore.
func CheckRateLimit(usageCount, rateLimit, windowMinutes int) RateLimitStatus {
	if windowMinutes <= 0 {
		windowMinutes = 60
	}

	remaining := rateLimit - usageCount
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitStatus{
		Allowed:   usageCount < rateLimit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Duration(windowMinutes) * time.Minute).Unix(),
	}
}
