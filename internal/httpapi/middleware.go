package httpapi

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/oggyb/matchmaking-core/internal/auth"
	svcErr "github.com/oggyb/matchmaking-core/internal/errors"
	"github.com/oggyb/matchmaking-core/internal/logger"
)

// requestLogger stores a request-scoped logger carrying the chi request id
// and logs every response.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With("request_id", chimiddleware.GetReqID(r.Context()))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.IntoContext(r.Context(), reqLog)))

			reqLog.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic in http handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
					writeError(w, errInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate requires a valid bearer token and stores the identity.
func authenticate(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, svcErr.ErrUnauthorized.WithMessage("missing bearer token"))
				return
			}
			id, err := verifier.Verify(token)
			if err != nil {
				logger.FromContext(r.Context(), logger.L()).Debug("token rejected", "err", err)
				writeError(w, svcErr.ErrUnauthorized.WithMessage("invalid access token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.IntoContext(r.Context(), id)))
		})
	}
}

func requireService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		if !id.IsService() {
			writeError(w, svcErr.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
