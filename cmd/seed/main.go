package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg, log)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// SQLite schemas are created by NewDB.
	if cfg.DB.Driver != config.DriverSQLite {
		if err := db.Migrate(context.Background(), database, cfg.DB.Driver); err != nil {
			log.Error("failed to migrate", "err", err)
			os.Exit(1)
		}
	}

	if err := db.SeedTestData(database, log); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
