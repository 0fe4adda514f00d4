package apikeys

import (
	"errors"

	"deskcore/internal/platform/models"
)

// ErrUnauthorized is returned for every failed check. Callers must not
// reveal which check failed.
var ErrUnauthorized = errors.New("api key authorization failed")

// KeyStore is the persistence surface the authorizer needs.
type KeyStore interface {
	GetByHash(hash string) (*models.APIKey, error)
}

// Authorizer runs the fixed inbound check chain:
// format -> hash lookup -> expiry -> rate limit -> permission.
type Authorizer struct {
	keys    KeyStore
	limiter *LimiterStore
}

func NewAuthorizer(keys KeyStore, limiter *LimiterStore) *Authorizer {
	return &Authorizer{keys: keys, limiter: limiter}
}

// Authorize validates the presented plaintext key for one request against
// the required "resource:action" permission. The first failing check
// short-circuits with the generic ErrUnauthorized.
func (a *Authorizer) Authorize(rawKey, permission string) (*models.APIKey, error) {
	if !ValidFormat(rawKey) {
		return nil, ErrUnauthorized
	}

	key, err := a.keys.GetByHash(HashKey(rawKey))
	if err != nil || key == nil || key.RevokedAt != nil {
		return nil, ErrUnauthorized
	}

	if IsExpired(key.ExpiresAt) {
		return nil, ErrUnauthorized
	}

	if status := a.limiter.Allow(key.ID, key.RateLimit); !status.Allowed {
		return nil, ErrUnauthorized
	}

	if !HasPermission(key.Permissions, permission) {
		return nil, ErrUnauthorized
	}

	return key, nil
}
