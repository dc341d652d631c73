package usecase

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrIngestionFailed wraps storage failures during a window's
	// transaction. The window is never partially visible.
	ErrIngestionFailed = errors.New("ranking ingestion failed")

	// ErrRankingNotReady marks an X window whose ranking the upstream has
	// not finalized yet (short page). Retried on a later run, never
	// recorded as permanently missing.
	ErrRankingNotReady = errors.New("ranking not finalized upstream")

	// ErrDependencyUnavailable is returned when the upstream client refuses
	// to issue a request (circuit open).
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// UpstreamUnavailableError is a non-2xx response from the ranking API.
// NotFound is the upstream's authoritative "no data for this window" signal;
// every other status aborts the current run.
type UpstreamUnavailableError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream request failed: status=%d url=%s", e.StatusCode, e.URL)
}

func (e *UpstreamUnavailableError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUpstreamNotFound reports whether err is an upstream 404.
func IsUpstreamNotFound(err error) bool {
	var upstreamErr *UpstreamUnavailableError
	return errors.As(err, &upstreamErr) && upstreamErr.NotFound()
}
