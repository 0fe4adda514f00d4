package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/engine/apikeys"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/pkg/metrics"
	"deskcore/internal/platform/auth"
)

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
}

func NewAuthMiddleware(tokenSvc *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Handle authenticates management requests with a bearer JWT. Like the
// API key chain, every failure gets the same generic 401; the response
// does not say whether the header was missing, malformed, or carried a
// bad token.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			reject(w)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(token)
		if err != nil {
			reject(w)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	// An API key presented on a JWT route is rejected here rather than
	// handed to the JWT parser.
	if strings.HasPrefix(parts[1], apikeys.LiteralPrefix) {
		return "", false
	}
	return parts[1], true
}

func reject(w http.ResponseWriter) {
	metrics.AuthFailures.Inc()
	errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Unauthorized", nil)
}
