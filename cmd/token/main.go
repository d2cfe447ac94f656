package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oggyb/matchmaking-core/internal/auth"
	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

// token prints a bearer token signed with AUTH_JWT_SECRET for local testing.
//
//	go run ./cmd/token -user <id>
//	go run ./cmd/token -user payments -service
func main() {
	user := flag.String("user", "", "subject (user id)")
	service := flag.Bool("service", false, "mint a service_role token")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if cfg.App.ENV == config.EnvProduction {
		logger.Error("refusing to mint tokens in production")
		os.Exit(1)
	}

	id := auth.Identity{UserID: *user}
	if *service {
		id.Role = auth.RoleService
	}
	token, err := auth.NewVerifier(cfg.Auth).Mint(id, *ttl)
	if err != nil {
		logger.Error("failed to mint token", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
