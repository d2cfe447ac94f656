// Package testutil builds isolated SQLite + miniredis fixtures for package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/matchmaking-core/internal/app"
	"github.com/oggyb/matchmaking-core/internal/cache"
	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/metrics"
)

// DiscardLogger drops all output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB opens a private in-memory SQLite database with the schema applied.
// A single connection serializes access so transactions behave like a
// row-locking database under concurrent tests.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	database, err := gorm.Open(sqlite.Open(dsn), db.Options(logger.NewGormLogger(DiscardLogger(), false)))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db.All()...))
	return database
}

// NewRedis starts a miniredis and a RedisCache pointing at it.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Close() })
	return mr, rc
}

// NewAppContext wires a fresh DB, Redis and a private metrics registry.
func NewAppContext(t *testing.T) (*app.AppContext, *miniredis.Miniredis) {
	t.Helper()
	database := NewDB(t)
	mr, rc := NewRedis(t)
	return app.New(database, rc, DiscardLogger(), metrics.New(prometheus.NewRegistry())), mr
}

// CreateUser inserts u, defaulting the plan to free.
func CreateUser(t *testing.T, database *gorm.DB, u db.User) db.User {
	t.Helper()
	if u.AccountStatus == "" {
		u.AccountStatus = "free"
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}
