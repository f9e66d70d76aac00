package app

import (
	"context"
	"fmt"

	"github.com/koopa0/canvas/internal/chat"
	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/log"
)

// Runtime is a fully initialized application with the chat flow defined.
// It encapsulates the common initialization path shared by the CLI and the
// HTTP server entry points.
type Runtime struct {
	App   *App
	Agent *chat.Agent
	Flow  *chat.Flow
}

// NewRuntime creates a fully initialized runtime.
//
// Usage:
//
//	runtime, err := app.NewRuntime(ctx, cfg, logger)
//	if err != nil { ... }
//	defer runtime.Close()
//	// Use runtime.Flow for agent interactions
func NewRuntime(ctx context.Context, cfg *config.Config, logger log.Logger) (*Runtime, error) {
	application, err := Setup(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}

	agent, err := application.CreateAgent()
	if err != nil {
		if closeErr := application.Close(); closeErr != nil {
			logger.Warn("close after failed agent creation", "error", closeErr)
		}
		return nil, fmt.Errorf("creating agent: %w", err)
	}

	// Get or define the chat flow (process-wide singleton)
	flow := chat.NewFlow(application.Genkit, agent)

	return &Runtime{
		App:   application,
		Agent: agent,
		Flow:  flow,
	}, nil
}

// Close releases all runtime resources.
func (r *Runtime) Close() error {
	return r.App.Close()
}
