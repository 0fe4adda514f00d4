package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "deskcore/internal/api/context"
	"deskcore/internal/api/handlers"
	"deskcore/internal/api/middleware"
	"deskcore/internal/pkg/errors"
	"deskcore/internal/platform/auth"
)

type Dependencies struct {
	EndpointHandler    *handlers.EndpointHandler
	APIKeyHandler      *handlers.APIKeyHandler
	EventHandler       *handlers.EventHandler
	IntegrationHandler *handlers.IntegrationHandler
	AnalyticsHandler   *handlers.AnalyticsHandler
	HealthHandler      *handlers.HealthHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *middleware.AuthMiddleware
	APIKeyMiddleware   *middleware.APIKeyMiddleware
	RequestLog         *middleware.RequestLogMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	authMid := deps.AuthMiddleware
	keyMid := deps.APIKeyMiddleware
	logMid := deps.RequestLog

	// Event ingest; callers authenticate with an API key, never a JWT.
	router.POST("/api/v1/events",
		chain(deps.EventHandler.Publish, keyMid.RequireKey("events:publish"), logMid.Handle))

	// Webhook endpoint management
	router.POST("/api/v1/webhooks/endpoints",
		chain(deps.EndpointHandler.Create, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/webhooks/endpoints",
		chain(deps.EndpointHandler.List, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/webhooks/endpoints/:endpoint_id",
		chain(deps.EndpointHandler.Get, authMid.Handle, logMid.Handle))
	router.PATCH("/api/v1/webhooks/endpoints/:endpoint_id",
		chain(deps.EndpointHandler.Update, authMid.Handle, logMid.Handle))
	router.DELETE("/api/v1/webhooks/endpoints/:endpoint_id",
		chain(deps.EndpointHandler.Delete, authMid.Handle, logMid.Handle))
	router.POST("/api/v1/webhooks/endpoints/:endpoint_id/ping",
		chain(deps.EndpointHandler.Ping, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/webhooks/endpoints/:endpoint_id/deliveries",
		chain(deps.EndpointHandler.ListDeliveries, authMid.Handle, logMid.Handle))

	// API key management
	router.POST("/api/v1/api-keys",
		chain(deps.APIKeyHandler.Create, authMid.Handle, requireRole("admin", "owner"), logMid.Handle))
	router.GET("/api/v1/api-keys",
		chain(deps.APIKeyHandler.List, authMid.Handle, logMid.Handle))
	router.DELETE("/api/v1/api-keys/:key_id",
		chain(deps.APIKeyHandler.Revoke, authMid.Handle, requireRole("admin", "owner"), logMid.Handle))

	// Integration catalog and tenant integrations. The catalog lives on
	// its own path; httprouter cannot mix a static segment with the
	// :integration_id wildcard.
	router.GET("/api/v1/integration-templates",
		chain(deps.IntegrationHandler.ListTemplates, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/integration-templates/:template_id",
		chain(deps.IntegrationHandler.GetTemplate, authMid.Handle, logMid.Handle))
	router.POST("/api/v1/integrations",
		chain(deps.IntegrationHandler.Create, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/integrations",
		chain(deps.IntegrationHandler.List, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/integrations/:integration_id",
		chain(deps.IntegrationHandler.Get, authMid.Handle, logMid.Handle))
	router.PATCH("/api/v1/integrations/:integration_id/active",
		chain(deps.IntegrationHandler.SetActive, authMid.Handle, logMid.Handle))
	router.DELETE("/api/v1/integrations/:integration_id",
		chain(deps.IntegrationHandler.Delete, authMid.Handle, requireRole("admin", "owner"), logMid.Handle))

	// Usage analytics
	router.GET("/api/v1/analytics/usage",
		chain(deps.AnalyticsHandler.GetUsageSummary, authMid.Handle, logMid.Handle))
	router.GET("/api/v1/analytics/endpoints",
		chain(deps.AnalyticsHandler.GetEndpointStats, authMid.Handle, logMid.Handle))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
