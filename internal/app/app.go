// Package app provides application initialization and dependency wiring.
//
// App is the core container shared by every entry point. It initializes
// tracing, the database pool, Genkit with the configured AI provider, the
// document store, and the Canvas tool kit, and creates the chat agent from
// those pieces.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koopa0/canvas/internal/artifact"
	"github.com/koopa0/canvas/internal/chat"
	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/log"
)

// App is the core application container.
type App struct {
	// Configuration
	Config *config.Config

	// Core services
	Genkit *genkit.Genkit
	DBPool *pgxpool.Pool
	Store  *artifact.Store
	Tools  []ai.Tool
	Logger log.Logger

	// Lifecycle management
	cancel     context.CancelFunc
	dbCleanup  func()
	traceFlush func()
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	// 1. Cancel context
	if a.cancel != nil {
		a.cancel()
	}

	// 2. Flush pending trace spans
	if a.traceFlush != nil {
		a.traceFlush()
	}

	// 3. Close database pool
	if a.dbCleanup != nil {
		a.dbCleanup()
		if a.Logger != nil {
			a.Logger.Info("database pool closed")
		}
	}

	return nil
}

// CreateAgent creates the Canvas chat agent from the container's services.
func (a *App) CreateAgent() (*chat.Agent, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return chat.New(chat.Config{
		Genkit:    a.Genkit,
		Logger:    logger.With("component", "chat"),
		Tools:     a.Tools,
		ModelName: a.Config.FullModelName(),
		MaxTurns:  a.Config.MaxTurns,
	})
}
