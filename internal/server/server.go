// Package server exposes the map generation pipeline over HTTP.
//
// The API is intentionally small: POST /api/v1/maps runs the full
// pipeline for a place and returns either a rendered PNG or a JSON
// summary, GET /healthz reports liveness, and GET /metrics exposes
// prometheus metrics for the pipeline, cache, and upstream requests.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mapforge/mapforge/pkg/pipeline"
)

const (
	// requestTimeout bounds a single map generation request. Overpass
	// queries alone can take up to three minutes on a cold cache.
	requestTimeout = 5 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Server serves the map generation API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	http   *http.Server
}

// New creates a Server listening on addr, backed by the given runner.
func New(addr string, runner *pipeline.Runner, logger *log.Logger) *Server {
	s := &Server{
		runner: runner,
		logger: logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the HTTP handler. Exposed separately so tests can
// drive it through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/maps", s.handleCreateMap)
	})

	return r
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully. In-flight map generations get shutdownTimeout to finish.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// requestID tags every request with a unique ID, echoed back in the
// X-Request-ID header and attached to log lines.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", duration,
			"request_id", r.Context().Value(requestIDKey),
		)
	})
}

// routePattern returns the chi route pattern for metrics labels,
// falling back to the raw path for unmatched routes. Patterns keep
// label cardinality bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
