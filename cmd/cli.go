package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/koopa0/canvas/internal/app"
	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/tui"
)

// runCLI initializes and starts the interactive CLI with Bubble Tea TUI.
func runCLI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.NewRuntime(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer func() {
		if closeErr := runtime.Close(); closeErr != nil {
			slog.Warn("runtime close error", "error", closeErr)
		}
	}()

	model, err := tui.New(ctx, runtime.Flow, runtime.Agent, runtime.App.Store, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
