package ranking

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow reports a malformed window identifier. It is never
// persisted; callers fail fast on it.
var ErrInvalidWindow = errors.New("invalid ranking window id")

// LeagueWindowDuration is the fixed span of one league window.
const LeagueWindowDuration = 2 * time.Hour

const leagueWindowIDLayout = "06010215"

// LeagueEpoch is the first league window the pipeline is expected to hold.
var LeagueEpoch = time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)

// XEpoch is the start of the first X window (the merged 2018-04/05 period).
var XEpoch = time.Date(2018, time.April, 1, 0, 0, 0, 0, time.UTC)

// xMergedWindowStart/End describe the one historical period where the
// upstream published two calendar months as a single window. It is kept as
// an explicit exception, not a calendar rule.
var (
	xMergedWindowStart = time.Date(2018, time.April, 1, 0, 0, 0, 0, time.UTC)
	xMergedWindowEnd   = time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)
)

// LeagueWindowOf floors an instant to the start of its 2-hour UTC bucket.
func LeagueWindowOf(t time.Time) time.Time {
	t = t.UTC().Truncate(time.Hour)
	if t.Hour()%2 == 1 {
		t = t.Add(-time.Hour)
	}
	return t
}

// LeagueWindowID renders a window start as the upstream YYMMDDHH id.
// The group-type suffix (T/P) is appended by the fetch path, not here.
func LeagueWindowID(start time.Time) string {
	return start.UTC().Format(leagueWindowIDLayout)
}

// ParseLeagueWindowID is the exact inverse of LeagueWindowID.
func ParseLeagueWindowID(id string) (time.Time, error) {
	if len(id) != len(leagueWindowIDLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWindow, id)
	}
	start, err := time.ParseInLocation(leagueWindowIDLayout, id, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWindow, id)
	}
	if start.Hour()%2 != 0 {
		return time.Time{}, fmt.Errorf("%w: %q is not aligned to an even UTC hour", ErrInvalidWindow, id)
	}
	return start, nil
}

// EnumerateLeagueWindows lists window starts strictly after startExclusive up
// to and including endInclusive. Both bounds are floored to their windows, so
// any instant inside a window stands for that window.
func EnumerateLeagueWindows(startExclusive, endInclusive time.Time) []time.Time {
	last := LeagueWindowOf(endInclusive)
	out := make([]time.Time, 0)
	for w := LeagueWindowOf(startExclusive).Add(LeagueWindowDuration); !w.After(last); w = w.Add(LeagueWindowDuration) {
		out = append(out, w)
	}
	return out
}

// XWindowOf floors an instant to the start of its calendar-month window,
// collapsing the merged 2018-04/05 period into its single window.
func XWindowOf(t time.Time) time.Time {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !start.Before(xMergedWindowStart) && start.Before(xMergedWindowEnd) {
		return xMergedWindowStart
	}
	return start
}

// XWindowEnd returns the exclusive end of the X window starting at start.
func XWindowEnd(start time.Time) time.Time {
	if start.Equal(xMergedWindowStart) {
		return xMergedWindowEnd
	}
	return start.AddDate(0, 1, 0)
}

// XWindowID renders the upstream range id, e.g. 190401T00_190501T00.
func XWindowID(start time.Time) string {
	return start.UTC().Format("060102") + "T00_" + XWindowEnd(start).UTC().Format("060102") + "T00"
}

// EnumerateXWindows lists X window starts strictly after startExclusive up to
// and including endInclusive. The merged period is emitted once.
func EnumerateXWindows(startExclusive, endInclusive time.Time) []time.Time {
	last := XWindowOf(endInclusive)
	out := make([]time.Time, 0)
	for w := XWindowEnd(XWindowOf(startExclusive)); !w.After(last); w = XWindowEnd(w) {
		out = append(out, w)
	}
	return out
}
