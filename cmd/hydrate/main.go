package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nutridex/backend/config"
	"github.com/nutridex/backend/internal/database"
	"github.com/nutridex/backend/internal/ingest"
	"github.com/nutridex/backend/internal/logger"
	"github.com/nutridex/backend/internal/nutrition"
)

func main() {
	// .env is a development convenience; production gets real env vars
	if !config.IsProduction() {
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logg, err := logger.New(config.GetEnvironment())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.New(cfg)
	if err != nil {
		logg.Fatal("failed to connect to database", "error", err)
	}

	cache, err := database.NewRedisClient(cfg)
	if err != nil {
		// caching is an optimization; run uncached rather than aborting
		logg.Warn("redis unavailable, response caching disabled", "error", err)
	}

	api := nutrition.NewClient(cfg, cache)
	run := logg.With("run_id", uuid.New().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	drainer := ingest.NewDrainer(db, api, run, cfg.BatchSize, cfg.CallDelay)
	stats, err := drainer.Run(ctx)
	if err != nil {
		run.Fatal("drain run failed",
			"error", err,
			"resolved", stats.Resolved,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
		)
	}

	run.Info("backlog drained",
		"resolved", stats.Resolved,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
}
