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

// seedTerms is the fixed list of search terms that bootstraps the backlog.
var seedTerms = []string{
	"eggs", "chicken breast", "salmon", "tofu", "shrimp", "lentils",
	"white rice", "bread", "pasta", "oatmeal", "quinoa", "potato",
	"apple", "banana", "orange", "blueberries", "broccoli", "spinach", "carrot",
	"milk", "almond milk", "yogurt", "cheese", "butter",
	"coffee", "tea", "soda", "orange juice",
	"peanut butter", "almonds", "chips", "chocolate", "popcorn",
}

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

	api := nutrition.NewClient(cfg, nil)
	run := logg.With("run_id", uuid.New().String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeder := ingest.NewSeeder(db, api, run, cfg.CallDelay)
	stats, err := seeder.Run(ctx, seedTerms)
	if err != nil {
		run.Fatal("seed run failed",
			"error", err,
			"terms", stats.Terms,
			"items", stats.Items,
			"failed", stats.Failed,
		)
	}

	run.Info("backlog seeded",
		"terms", stats.Terms,
		"items", stats.Items,
		"failed", stats.Failed,
	)
}
