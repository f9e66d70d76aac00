package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/canvas/db"
	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/log"
	"github.com/koopa0/canvas/internal/observability"
	"github.com/koopa0/canvas/internal/sqlc"
	"github.com/koopa0/canvas/internal/tools"
)

// Database pool settings.
const (
	poolMaxConns        = 10
	poolMinConns        = 2
	poolMaxConnLifetime = 30 * time.Minute
	poolMaxConnIdleTime = 5 * time.Minute
	poolHealthCheck     = 1 * time.Minute
	pingTimeout         = 5 * time.Second
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing first, so Genkit's TracerProvider has the processor before Init.
	a.traceFlush = observability.SetupTracing(ctx, cfg.Tracing, logger.With("component", "observability"))

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Store = artifact.NewStore(sqlc.New(pool), pool, logger.With("component", "artifact"))

	if err := provideTools(a); err != nil {
		return nil, err
	}

	// Set up lifecycle management
	_, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	return a, nil
}

// provideDBPool creates a PostgreSQL connection pool and runs migrations.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = poolMaxConns
	poolCfg.MinConns = poolMinConns
	poolCfg.MaxConnLifetime = poolMaxConnLifetime
	poolCfg.MaxConnIdleTime = poolMaxConnIdleTime
	poolCfg.HealthCheckPeriod = poolHealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, pingTimeout)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	cleanup := func() {
		pool.Close()
	}

	return pool, cleanup, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
// Call ordering in Setup ensures tracing is set up first.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with gemini provider")
	}
	logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)
	return g, nil
}

// provideTools creates the Canvas document tool kit, registers it with
// Genkit, and stores the tool list for the agent.
func provideTools(a *App) error {
	kit, err := tools.NewKit(a.Logger.With("component", "tools"))
	if err != nil {
		return fmt.Errorf("creating tool kit: %w", err)
	}
	if err := kit.Register(a.Genkit); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	a.Tools = kit.All(context.Background(), a.Genkit)
	a.Logger.Info("tools registered at construction", "count", len(a.Tools))
	return nil
}
