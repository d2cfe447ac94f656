package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

// migrate applies the embedded schema migrations to the configured database.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)
	log := logger.L().With("driver", cfg.DB.Driver)

	if cfg.DB.Driver == config.DriverSQLite {
		log.Info("sqlite schema is managed by the service on open, nothing to do")
		return
	}

	database, err := db.NewDB(cfg, log)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.Migrate(context.Background(), database, cfg.DB.Driver); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}
	log.Info("migrations applied")
}
