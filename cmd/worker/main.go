package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"deskcore/internal/engine/analytics"
	"deskcore/internal/pkg/logger"
	"deskcore/internal/platform/config"
	"deskcore/internal/platform/database"
	"deskcore/internal/platform/repositories"
	"deskcore/internal/workers"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging, "deskcore-worker")

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	jobs := workers.NewJobs(
		analytics.NewRepository(db),
		repositories.NewDeliveryRepository(db),
		cfg.Workers.AttemptRetentionDays,
	)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Workers.UsageRollupSchedule, jobs.RollupUsage); err != nil {
		log.Fatal().Err(err).Msg("invalid usage rollup schedule")
	}
	if _, err := c.AddFunc(cfg.Workers.PurgeSchedule, jobs.PurgeOldRecords); err != nil {
		log.Fatal().Err(err).Msg("invalid purge schedule")
	}

	c.Start()
	log.Info().
		Str("rollup", cfg.Workers.UsageRollupSchedule).
		Str("purge", cfg.Workers.PurgeSchedule).
		Msg("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	log.Info().Msg("worker stopped")
}
