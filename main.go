package main

import (
	"log"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"sleeptrend/adapters/postgres"
	"sleeptrend/internal"
	"sleeptrend/internal/config"
	"sleeptrend/ports"
	"sleeptrend/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	// The archive is optional: without DATABASE_URL the engine serves
	// analyses without persisting them.
	var repo ports.AnalysisRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to analysis archive: %v", err)
		}
		defer db.Close()
		repo = postgres.NewRunRepository(db)
		logger.Info("analysis archive connected")
	} else {
		logger.Warn("DATABASE_URL not set, running without the analysis archive")
	}

	server := ui.NewServer(cfg, repo, logger)

	logger.Info("starting sleeptrend server on port %s", cfg.Server.Port)
	log.Fatal(server.Run(":" + cfg.Server.Port))
}
