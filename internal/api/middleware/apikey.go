package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/apikeys"
)

// KeyUsageRecorder updates key bookkeeping after a successful check.
type KeyUsageRecorder interface {
	UpdateLastUsed(id string) error
}

type APIKeyMiddleware struct {
	authorizer *apikeys.Authorizer
	usage      KeyUsageRecorder
}

func NewAPIKeyMiddleware(authorizer *apikeys.Authorizer, usage KeyUsageRecorder) *APIKeyMiddleware {
	return &APIKeyMiddleware{authorizer: authorizer, usage: usage}
}

// RequireKey authenticates the request with an API key holding the given
// permission. Every failure gets the same generic 401; the response must
// not reveal whether the key exists, is expired, is revoked, is over its
// rate limit, or lacks the permission.
func (m *APIKeyMiddleware) RequireKey(permission string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawKey := extractKey(r)
			if rawKey == "" {
				reject(w)
				return
			}

			key, err := m.authorizer.Authorize(rawKey, permission)
			if err != nil {
				reject(w)
				return
			}

			if m.usage != nil {
				go m.usage.UpdateLastUsed(key.ID)
			}

			ctx := context.WithValue(r.Context(), apiContext.APIKey, key)
			next(w, r.WithContext(ctx))
		}
	}
}

func extractKey(r *http.Request) string {
	if header := r.Header.Get("X-API-Key"); header != "" {
		return header
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
