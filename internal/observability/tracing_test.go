package observability

import (
	"context"
	"testing"

	"github.com/koopa0/canvas/internal/config"
	"github.com/koopa0/canvas/internal/log"
)

func TestSetupTracing_DisabledIsNoop(t *testing.T) {
	flush := SetupTracing(context.Background(), config.TracingConfig{}, log.NewNop())
	if flush == nil {
		t.Fatal("SetupTracing should always return a flush func")
	}
	flush() // Must not panic
}
