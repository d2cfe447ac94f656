package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/matchmaking-core/internal/auth"
	"github.com/oggyb/matchmaking-core/internal/config"
)

// Registrar attaches one service implementation to the server. The swipe
// service provides one; the health service is always registered.
type Registrar interface {
	Register(s *grpc.Server)
}

// NewGRPCServer builds a gRPC server with the recovery, logging and auth
// interceptors and registers all provided services plus the standard
// health service.
func NewGRPCServer(verifier *auth.Verifier, log *slog.Logger, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor(log),
			LoggingInterceptor(log),
			AuthInterceptor(verifier, healthpb.Health_ServiceDesc.ServiceName),
		),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer
}

// StartGRPCServer serves grpcServer on the configured address until ctx is
// cancelled, then stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, grpcServer *grpc.Server) error {
	addr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return Serve(ctx, grpcServer, lis)
}

// Serve runs grpcServer on lis until ctx is done.
func Serve(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	err := grpcServer.Serve(lis)
	if ctx.Err() != nil {
		<-stopped
		return nil
	}
	return err
}
