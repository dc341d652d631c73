package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(3, 30*time.Second)
	b.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("Allow before threshold: %v", err)
		}
		b.RecordFailure()
	}

	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if b.State() != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", b.State())
	}
}

func TestCircuitBreakerCooldownAllowsProbe(t *testing.T) {
	t.Parallel()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(1, 30*time.Second)
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected open circuit, got %v", err)
	}

	clock = clock.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe after cooldown, got %v", err)
	}

	b.RecordSuccess()
	if b.State() != CircuitStateClosed {
		t.Fatalf("expected closed after success, got %s", b.State())
	}
}

func TestCircuitBreakerFailedProbeRearms(t *testing.T) {
	t.Parallel()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewCircuitBreaker(1, 30*time.Second)
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	clock = clock.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe, got %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); err != ErrCircuitOpen {
		t.Fatalf("expected re-armed circuit, got %v", err)
	}
}
