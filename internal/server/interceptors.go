package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/matchmaking-core/internal/auth"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

// RecoveryInterceptor turns handler panics into Internal errors.
func RecoveryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in grpc handler", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor attaches a request-scoped logger carrying a request id
// and logs each call's outcome.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqLog := log.With("request_id", requestID(ctx), "method", info.FullMethod)

		resp, err := handler(logger.IntoContext(ctx, reqLog), req)

		code := status.Code(err)
		attrs := []any{"code", code.String(), "duration", time.Since(start)}
		if reason := svcErr.ReasonOf(err); reason != "" {
			attrs = append(attrs, "reason", reason)
		}
		if code == codes.Internal || code == codes.Unknown {
			reqLog.Error("grpc request failed", append(attrs, "err", err)...)
		} else {
			reqLog.Debug("grpc request", attrs...)
		}
		return resp, err
	}
}

// AuthInterceptor verifies the bearer token in the authorization metadata
// and stores the identity in the context. Services listed in public skip it.
func AuthInterceptor(verifier *auth.Verifier, public ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		for _, svc := range public {
			if strings.HasPrefix(info.FullMethod, "/"+svc+"/") {
				return handler(ctx, req)
			}
		}

		md, _ := metadata.FromIncomingContext(ctx)
		var raw string
		if values := md.Get("authorization"); len(values) > 0 {
			raw = values[0]
		}
		token, ok := auth.BearerToken(raw)
		if !ok {
			return nil, svcErr.Map(svcErr.ErrUnauthorized.WithMessage("missing bearer token"))
		}
		id, err := verifier.Verify(token)
		if err != nil {
			return nil, svcErr.Map(svcErr.ErrUnauthorized.WithMessage("invalid access token"))
		}
		return handler(auth.IntoContext(ctx, id), req)
	}
}

func requestID(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if values := md.Get("x-request-id"); len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return uuid.NewString()
}
