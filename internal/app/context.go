package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/cache"
	"github.com/oggyb/matchmaking-core/internal/metrics"
)

// AppContext holds shared dependencies (DB, Redis, Logger, Metrics)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// New creates a new AppContext. Metrics may be nil.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, m *metrics.Metrics) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Metrics:    m,
	}
}
