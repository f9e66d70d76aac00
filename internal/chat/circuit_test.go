package chat

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state CircuitState
		want  string
	}{
		{CircuitClosed, "closed"},
		{CircuitOpen, "open"},
		{CircuitHalfOpen, "half-open"},
		{CircuitState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("CircuitState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestCircuitBreaker_ClosedAllows(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())
	if err := cb.Allow(); err != nil {
		t.Errorf("Allow() on closed breaker = %v, want nil", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %v, want CircuitClosed", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})

	cb.Failure()
	cb.Failure()
	if cb.State() != CircuitClosed {
		t.Fatalf("State() after 2 failures = %v, want CircuitClosed", cb.State())
	}

	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Fatalf("State() after 3 failures = %v, want CircuitOpen", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() on open breaker = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})

	cb.Failure()
	cb.Success() // resets counter
	cb.Failure()
	if cb.State() != CircuitClosed {
		t.Errorf("State() = %v, want CircuitClosed (failures never consecutive)", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          10 * time.Millisecond,
	})

	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Fatalf("State() = %v, want CircuitOpen", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() after timeout = %v, want nil (half-open probe)", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("State() = %v, want CircuitHalfOpen", cb.State())
	}

	// Two successes close the breaker again.
	cb.Success()
	cb.Success()
	if cb.State() != CircuitClosed {
		t.Errorf("State() after recovery = %v, want CircuitClosed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		Timeout:          10 * time.Millisecond,
	})

	cb.Failure()
	time.Sleep(20 * time.Millisecond)
	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() = %v, want nil", err)
	}

	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Errorf("State() after half-open failure = %v, want CircuitOpen", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Fatalf("State() = %v, want CircuitOpen", cb.State())
	}

	cb.Reset()
	if cb.State() != CircuitClosed {
		t.Errorf("State() after Reset = %v, want CircuitClosed", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("Allow() after Reset = %v, want nil", err)
	}
}

func TestCircuitBreaker_ZeroConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	def := DefaultCircuitBreakerConfig()

	// Opens only at the default threshold.
	for range def.FailureThreshold - 1 {
		cb.Failure()
	}
	if cb.State() != CircuitClosed {
		t.Fatalf("State() below default threshold = %v, want CircuitClosed", cb.State())
	}
	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Errorf("State() at default threshold = %v, want CircuitOpen", cb.State())
	}
}
