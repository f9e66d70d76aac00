// Package cmd provides CLI commands for Canvas.
//
// Commands:
//   - cli: Interactive terminal chat with Bubble Tea TUI and canvas panel
//   - serve: HTTP API server with SSE streaming
//
// Signal handling and graceful shutdown are implemented
// for all commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/koopa0/canvas/internal/log"
)

// Execute is the main entry point for the Canvas CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "cli":
		return runCLI()
	case "serve":
		return runServe()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Canvas - AI chat with streaming documents")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  canvas cli          Start interactive chat mode")
	fmt.Println("  canvas serve [addr] Start HTTP API server (default: 127.0.0.1:3400)")
	fmt.Println("  canvas --version    Show version information")
	fmt.Println("  canvas --help       Show this help")
	fmt.Println()
	fmt.Println("CLI Commands (in interactive mode):")
	fmt.Println("  /help               Show available commands")
	fmt.Println("  /clear              Clear conversation history")
	fmt.Println("  /exit, /quit        Exit Canvas")
	fmt.Println()
	fmt.Println("Shortcuts:")
	fmt.Println("  Ctrl+D              Exit Canvas")
	fmt.Println("  Ctrl+C              Cancel current input")
	fmt.Println("  Ctrl+O              Toggle the canvas panel")
	fmt.Println("  Ctrl+V              Open version history")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY      Required: Gemini API key")
	fmt.Println("  DEBUG               Optional: Enable debug logging")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/koopa0/canvas")
}
