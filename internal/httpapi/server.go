// Package httpapi serves the swipe core over JSON/HTTP with chi.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/matchmaking-core/internal/auth"
	"github.com/oggyb/matchmaking-core/internal/config"
	"github.com/oggyb/matchmaking-core/internal/matching"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Engine   *matching.Engine
	Verifier *auth.Verifier
	Logger   *slog.Logger
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Ready reports dependency health for /healthz; nil means always ready.
	Ready func(ctx context.Context) error
}

type handlers struct {
	engine *matching.Engine
	log    *slog.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(d Deps) http.Handler {
	h := &handlers{engine: d.Engine, log: d.Logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(recoverer(d.Logger))

	r.Get("/healthz", healthz(d.Ready))
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(authenticate(d.Verifier))

		r.Post("/swipes", h.swipe)
		r.Post("/swipes/undo", h.undo)
		r.Get("/swipes/stats", h.stats)
		r.Post("/matches/instant", h.instantMatch)
		r.Get("/matches", h.listMatches)
		r.Post("/highlights", h.useHighlight)
		r.Get("/likes", h.listLikedYou)
		r.Get("/likes/pending", h.listPendingLikers)
		r.Get("/likes/count", h.countLikedYou)
	})

	r.Route("/internal", func(r chi.Router) {
		r.Use(authenticate(d.Verifier), requireService)
		r.Post("/purchases", h.fulfillPurchase)
	})

	return r
}

// Server wraps an http.Server bound to the configured address.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func NewServer(cfg config.HTTPConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

func (s *Server) Addr() string { return s.httpServer.Addr }

// Run serves until ctx is cancelled, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func healthz(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
