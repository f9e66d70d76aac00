// Package observability wires OTLP trace export into Genkit's tracer.
package observability

import (
	"context"
	"time"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/log"
)

const flushTimeout = 5 * time.Second

// SetupTracing registers an OTLP/HTTP span processor on Genkit's
// TracerProvider. Must run before genkit.Init so the first generate call
// is traced. Returns a flush function for shutdown; when tracing is
// disabled or the exporter cannot be built, the flush is a no-op.
//
// Spans go to a local OTLP collector; the collector handles
// authentication, buffering, and forwarding to the backend.
func SetupTracing(ctx context.Context, cfg config.TracingConfig, logger log.Logger) func() {
	if !cfg.Enabled {
		return func() {}
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // local collector doesn't need TLS
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown

	//nolint:contextcheck // Independent context: shutdown runs during teardown when parent is canceled
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
