// Package api provides the HTTP REST API for the canvas service.
//
// Endpoints:
//
//	POST /api/chat                         - synchronous chat (genkit.Handler)
//	POST /api/chat/stream                  - streaming chat (SSE)
//	GET  /api/documents                    - list persisted documents
//	GET  /api/documents/{id}               - fetch one document
//	GET  /api/documents/{id}/versions      - full version history
//	POST /api/documents/{id}/restore       - restore a historical version
//	DELETE /api/documents/{id}             - delete a document
//	GET  /health                           - liveness probe
//	GET  /ready                            - readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - ratelimit.go: per-IP rate limiting
//   - health.go: health check endpoints (/health, /ready)
//   - documents.go: document and version endpoints
//   - chat.go: chat endpoints via Genkit Flow
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/chat"
	"github.com/koopa0/canvas/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3400"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Streaming chat responses can run long.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	IdleTimeout = 120 * time.Second

	// Default per-IP rate limit: tokens per second and burst.
	defaultRateLimit = 10.0
	defaultRateBurst = 30
)

// Server is the HTTP server for the canvas REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger
	limits *rateLimiter

	// Handlers
	health    *HealthHandler
	documents *DocumentHandler
	chat      *ChatHandler
}

// NewServer creates a new HTTP server with all routes registered.
// pool is used for readiness checks, store backs the document endpoints,
// and chatFlow (from chat.NewFlow) backs the chat endpoints. Any of them
// may be nil; the corresponding routes degrade or are not registered.
func NewServer(pool *pgxpool.Pool, store *artifact.Store, chatFlow *chat.Flow, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:       mux,
		logger:    logger,
		limits:    newRateLimiter(defaultRateLimit, defaultRateBurst),
		health:    NewHealthHandler(pool, logger),
		documents: NewDocumentHandler(store, logger),
		chat:      NewChatHandler(chatFlow, store, logger),
	}

	s.health.RegisterRoutes(mux)
	s.documents.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → rate limit → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.limits, false, s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
