package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

// NewDB opens the configured database. Schema changes are applied separately
// by Migrate (goose) or, for SQLite development databases, by AutoMigrate.
func NewDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dsn, err := cfg.DB.ResolveDSN()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}

	database, err := gorm.Open(dialector, Options(logger.NewGormLogger(log, cfg.Log.SQL)))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if cfg.DB.Driver == config.DriverSQLite {
		if err := database.AutoMigrate(All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return database, nil
}

// Options is the gorm configuration shared by the service and the tests.
// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey,
// which the repositories rely on to detect swipe and match conflicts.
func Options(l gormlogger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:                 l,
		TranslateError:         true,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}
