package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/oggyb/matchmaking-core/internal/app"
	"github.com/oggyb/matchmaking-core/internal/auth"
	"github.com/oggyb/matchmaking-core/internal/cache"
	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/db"
	"github.com/oggyb/matchmaking-core/internal/entitlement"
	"github.com/oggyb/matchmaking-core/internal/httpapi"
	"github.com/oggyb/matchmaking-core/internal/logger"
	"github.com/oggyb/matchmaking-core/internal/matching"
	"github.com/oggyb/matchmaking-core/internal/metrics"
	"github.com/oggyb/matchmaking-core/internal/server"
	"github.com/oggyb/matchmaking-core/internal/service/swipe"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDB(cfg, log)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}
	if cfg.DB.MigrateOnStart && cfg.DB.Driver != config.DriverSQLite {
		if err := db.Migrate(ctx, database, cfg.DB.Driver); err != nil {
			log.Error("failed to migrate", "err", err)
			os.Exit(1)
		}
	}

	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	if cfg.App.IsDev() {
		if err := db.SeedTestData(database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(database, redisCache, log, metrics.New(prometheus.DefaultRegisterer))
	engine := matching.NewEngine(appCtx, matching.Options{
		Limits: entitlement.Limits{
			FreeDailySwipes:   cfg.Limits.FreeDailySwipes,
			SparshDailySwipes: cfg.Limits.SparshDailySwipes,
		},
		BurstPerMinute: cfg.Limits.BurstPerMinute,
		MatchChannel:   cfg.Redis.MatchChannel,
	})
	verifier := auth.NewVerifier(cfg.Auth)

	grpcServer := server.NewGRPCServer(verifier, log, swipe.NewRegistrar(appCtx, engine))
	httpServer := httpapi.NewServer(cfg.HTTP, httpapi.NewRouter(httpapi.Deps{
		Engine:   engine,
		Verifier: verifier,
		Logger:   log,
		Gatherer: prometheus.DefaultGatherer,
		Ready: func(ctx context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return redisCache.Ping(ctx)
		},
	}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		return server.StartGRPCServer(gctx, cfg, grpcServer)
	})
	g.Go(func() error {
		log.Info("starting HTTP server", "addr", httpServer.Addr())
		return httpServer.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
