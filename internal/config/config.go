package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App    AppConfig
	Log    LogConfig
	DB     DBConfig
	Redis  RedisConfig
	GRPC   GRPCConfig
	HTTP   HTTPConfig
	Auth   AuthConfig
	Limits LimitsConfig
}

type AppConfig struct {
	ENV string `envconfig:"APP_ENV" default:"development"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.ENV, EnvDevelopment)
}

type LogConfig struct {
	Level     string `envconfig:"LOG_LEVEL" default:"info"`
	Format    string `envconfig:"LOG_FORMAT" default:"text"`
	Component string `envconfig:"LOG_COMPONENT" default:"matchmaking"`
	Source    bool   `envconfig:"LOG_SOURCE" default:"false"`
	// SQL enables gorm statement logging through slog.
	SQL bool `envconfig:"LOG_SQL" default:"false"`
}

type DBConfig struct {
	Driver         string `envconfig:"DB_DRIVER" default:"postgres"`
	DSN            string `envconfig:"DB_DSN"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           string `envconfig:"DB_PORT"`
	User           string `envconfig:"DB_USER" default:"postgres"`
	Password       string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name           string `envconfig:"DB_NAME" default:"matchmaking"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrateOnStart bool   `envconfig:"DB_MIGRATE_ON_START" default:"false"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// ResolveDSN returns the explicit DSN when set, otherwise builds one for the
// configured driver from the individual connection fields.
func (d DBConfig) ResolveDSN() (string, error) {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN, nil
	}

	switch strings.ToLower(d.Driver) {
	case DriverPostgres:
		port := d.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.User, d.Password),
			Host:     d.Host + ":" + port,
			Path:     d.Name,
			RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode) + "&TimeZone=UTC",
		}
		return u.String(), nil
	case DriverMySQL:
		port := d.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			d.User, d.Password, d.Host, port, d.Name,
		), nil
	case DriverSQLite:
		return "file:" + d.Name + ".db?_busy_timeout=5000", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", d.Driver)
	}
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD"`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	MatchChannel string `envconfig:"REDIS_MATCH_CHANNEL" default:"matches.created"`
}

type GRPCConfig struct {
	Host string `envconfig:"GRPC_HOST" default:"127.0.0.1"`
	Port string `envconfig:"GRPC_PORT" default:"50051"`
}

type HTTPConfig struct {
	Host            string        `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	Port            string        `envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" default:"dev-secret-change-me"`
	Issuer    string `envconfig:"AUTH_JWT_ISSUER"`
}

// LimitsConfig holds the per-tier daily swipe quotas and the anti-burst window.
type LimitsConfig struct {
	FreeDailySwipes   int `envconfig:"LIMIT_FREE_DAILY_SWIPES" default:"20"`
	SparshDailySwipes int `envconfig:"LIMIT_SPARSH_DAILY_SWIPES" default:"50"`
	// BurstPerMinute caps swipes per user per minute; 0 disables the check.
	BurstPerMinute int `envconfig:"LIMIT_BURST_PER_MINUTE" default:"60"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if _, err := cfg.DB.ResolveDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
