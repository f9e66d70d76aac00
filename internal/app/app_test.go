package app

import (
	"testing"

	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/log"
)

func TestApp_Close_Empty(t *testing.T) {
	a := &App{}
	if err := a.Close(); err != nil {
		t.Errorf("Close on empty app should not fail: %v", err)
	}
}

func TestApp_Close_RunsCleanups(t *testing.T) {
	var dbClosed, traceFlushed bool
	a := &App{
		Logger:     log.NewNop(),
		dbCleanup:  func() { dbClosed = true },
		traceFlush: func() { traceFlushed = true },
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !dbClosed {
		t.Error("Close should run the database cleanup")
	}
	if !traceFlushed {
		t.Error("Close should flush traces")
	}
}

func TestApp_CreateAgent_RequiresGenkit(t *testing.T) {
	a := &App{
		Config: &config.Config{ModelName: "gemini-2.5-flash", MaxTurns: 5},
		Logger: log.NewNop(),
	}
	if _, err := a.CreateAgent(); err == nil {
		t.Error("CreateAgent without Genkit should fail validation")
	}
}
