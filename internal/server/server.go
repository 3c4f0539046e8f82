// Package server exposes tangle analysis over HTTP.
//
// Routes:
//
//	GET  /healthz      build info and liveness
//	POST /v1/analyze   body is a tangle description; returns a report
//	POST /v1/render    body is a tangle description; returns an SVG diagram
//	GET  /metrics      Prometheus metrics, when enabled
//
// Both POST endpoints accept ?name= to label the input in logs and reports.
// /v1/analyze accepts ?format=json|text (default json) and ?refresh=true to
// bypass the report cache. /v1/render accepts ?detailed=true and ?rank=true
// and refuses tangles larger than Options.MaxRenderNodes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tanglestat/pkg/pipeline"
)

// DefaultMaxBody bounds the request body of the POST endpoints.
const DefaultMaxBody = 32 << 20

// DefaultMaxRenderNodes bounds the transactions /v1/render lays out. Graphviz
// layout runs in the request goroutine and grows superlinearly.
const DefaultMaxRenderNodes = 5000

// Options configures the HTTP API.
type Options struct {
	// Precision is the number of decimals in text reports.
	Precision int
	// MaxBody caps request bodies in bytes. Zero means DefaultMaxBody.
	MaxBody int64
	// MaxRenderNodes caps the transactions, origin included, that
	// /v1/render accepts. Zero means DefaultMaxRenderNodes.
	MaxRenderNodes int
	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
}

// Server is an HTTP server bound to one pipeline runner.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New creates a server listening on addr.
func New(addr string, runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(runner, logger, opts),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.httpServer.Addr)
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

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
