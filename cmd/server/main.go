package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"deskcore/internal/api"
	"deskcore/internal/api/handlers"
	"deskcore/internal/api/middleware"
	"deskcore/internal/engine/analytics"
	"deskcore/internal/engine/apikeys"
	"deskcore/internal/engine/delivery"
	"deskcore/internal/engine/registry"
	"deskcore/internal/engine/templates"
	"deskcore/internal/engine/vault"
	"deskcore/internal/pkg/logger"
	"deskcore/internal/platform/auth"
	"deskcore/internal/platform/config"
	"deskcore/internal/platform/database"
	"deskcore/internal/platform/models"
	"deskcore/internal/platform/repositories"
)

// endpointResolver feeds the delivery scheduler from the endpoint
// table; the registry service cannot be used directly because it needs
// the scheduler as its canceller.
type endpointResolver struct {
	repo *repositories.EndpointRepository
}

func (r *endpointResolver) Resolve(firmID, eventType string) ([]*models.WebhookEndpoint, error) {
	return r.repo.ListSubscribed(firmID, eventType)
}

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "deskcore-server")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Repositories
	endpointRepo := repositories.NewEndpointRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	deliveryRepo := repositories.NewDeliveryRepository(db)
	integrationRepo := repositories.NewIntegrationRepository(db)
	usageRepo := analytics.NewRepository(db)

	// Engine services
	credentialVault, err := vault.New(cfg.Vault.MasterSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize credential vault")
	}

	scheduler := delivery.NewScheduler(
		&endpointResolver{repo: endpointRepo},
		deliveryRepo,
		delivery.WithHTTPClient(&http.Client{Timeout: cfg.Webhooks.DeliveryTimeout}),
		delivery.WithMaxConcurrent(cfg.Webhooks.MaxConcurrentDeliveries),
		delivery.WithEndpointMarker(endpointRepo),
	)

	registrySvc := registry.NewService(endpointRepo, scheduler)
	catalog := templates.NewCatalog()
	limiter := apikeys.NewLimiterStore(cfg.RateLimit.WindowMinutes)
	authorizer := apikeys.NewAuthorizer(apiKeyRepo, limiter)
	analyticsSvc := analytics.NewService(usageRepo)
	tokenSvc := auth.NewTokenService(cfg.JWT)

	// Router
	deps := &api.Dependencies{
		EndpointHandler:    handlers.NewEndpointHandler(registrySvc, deliveryRepo),
		APIKeyHandler:      handlers.NewAPIKeyHandler(apiKeyRepo, cfg.RateLimit.DefaultLimit),
		EventHandler:       handlers.NewEventHandler(scheduler),
		IntegrationHandler: handlers.NewIntegrationHandler(catalog, credentialVault, integrationRepo),
		AnalyticsHandler:   handlers.NewAnalyticsHandler(analyticsSvc),
		HealthHandler:      handlers.NewHealthHandler(db),
		MetricsHandler:     handlers.NewMetricsHandler(),
		AuthMiddleware:     middleware.NewAuthMiddleware(tokenSvc),
		APIKeyMiddleware:   middleware.NewAPIKeyMiddleware(authorizer, apiKeyRepo),
		RequestLog:         middleware.NewRequestLogMiddleware(usageRepo),
	}
	router := api.NewRouter(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if err := scheduler.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}
