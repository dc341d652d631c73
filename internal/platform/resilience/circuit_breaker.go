package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed CircuitState = "closed"
	CircuitStateOpen   CircuitState = "open"
)

// CircuitBreaker guards the upstream ranking API. The fetch pipeline is
// strictly sequential, so a plain closed/open breaker with a cooldown is
// enough; the single retry after cooldown plays the half-open role.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration

	consecutiveFailures int
	openedAt            time.Time
	now                 func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}

	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		now:              time.Now,
	}
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveFailures < b.failureThreshold {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.openTimeout {
		return ErrCircuitOpen
	}
	// Cooldown elapsed: let one request through; a failure re-arms the timer.
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if b.consecutiveFailures >= b.failureThreshold {
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.consecutiveFailures >= b.failureThreshold && b.now().Sub(b.openedAt) < b.openTimeout {
		return CircuitStateOpen
	}
	return CircuitStateClosed
}
