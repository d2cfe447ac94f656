package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/matchmaking-core/internal/auth"
	"github.com/oggyb/matchmaking-core/internal/config"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRecoveryInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/matchmaking.swipe.v1.SwipeService/Swipe"}
	_, err := RecoveryInterceptor(discard)(context.Background(), nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptorStoresRequestLogger(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "req-1"))

	var got *slog.Logger
	_, err := LoggingInterceptor(discard)(ctx, nil, info, func(ctx context.Context, _ any) (any, error) {
		got = logger.FromContext(ctx, nil)
		return nil, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.NotSame(t, discard, got)
}

func TestAuthInterceptor(t *testing.T) {
	verifier := auth.NewVerifier(config.AuthConfig{JWTSecret: "s3cret"})
	interceptor := AuthInterceptor(verifier, "grpc.health.v1.Health")
	handler := func(ctx context.Context, _ any) (any, error) {
		id, _ := auth.FromContext(ctx)
		return id.UserID, nil
	}
	swipeInfo := &grpc.UnaryServerInfo{FullMethod: "/matchmaking.swipe.v1.SwipeService/Swipe"}

	t.Run("public service", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}, handler)
		assert.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := interceptor(context.Background(), nil, swipeInfo, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Equal(t, svcErr.ReasonUnauthorized, svcErr.ReasonOf(err))
	})

	t.Run("bad token", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
		_, err := interceptor(ctx, nil, swipeInfo, handler)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := verifier.Mint(auth.Identity{UserID: "u1"}, time.Minute)
		require.NoError(t, err)
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
		resp, err := interceptor(ctx, nil, swipeInfo, handler)
		require.NoError(t, err)
		assert.Equal(t, "u1", resp)
	})
}
