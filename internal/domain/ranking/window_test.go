package ranking

import (
	"errors"
	"testing"
	"time"
)

func TestLeagueWindowOfFloorsToEvenHour(t *testing.T) {
	t.Parallel()

	want := time.Date(2019, 2, 19, 12, 0, 0, 0, time.UTC)

	cases := []time.Time{
		time.Date(2019, 2, 19, 12, 0, 0, 0, time.UTC),
		time.Date(2019, 2, 19, 12, 30, 15, 0, time.UTC),
		time.Date(2019, 2, 19, 13, 59, 59, 999_000_000, time.UTC),
	}
	for _, in := range cases {
		if got := LeagueWindowOf(in); !got.Equal(want) {
			t.Fatalf("LeagueWindowOf(%s) = %s, want %s", in, got, want)
		}
	}

	next := time.Date(2019, 2, 19, 14, 0, 0, 0, time.UTC)
	if got := LeagueWindowOf(next); !got.Equal(next) {
		t.Fatalf("LeagueWindowOf(%s) = %s, want %s", next, got, next)
	}
}

func TestLeagueWindowIDRoundTrip(t *testing.T) {
	t.Parallel()

	start := time.Date(2019, 2, 19, 12, 0, 0, 0, time.UTC)
	id := LeagueWindowID(start)
	if id != "19021912" {
		t.Fatalf("LeagueWindowID = %q, want 19021912", id)
	}

	parsed, err := ParseLeagueWindowID(id)
	if err != nil {
		t.Fatalf("ParseLeagueWindowID error: %v", err)
	}
	if !parsed.Equal(start) {
		t.Fatalf("round trip start = %s, want %s", parsed, start)
	}
	if LeagueWindowID(parsed) != id {
		t.Fatalf("round trip id = %q, want %q", LeagueWindowID(parsed), id)
	}
}

func TestParseLeagueWindowIDRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "1902191", "190219121", "19021913", "1902191x"} {
		if _, err := ParseLeagueWindowID(id); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("ParseLeagueWindowID(%q) err = %v, want ErrInvalidWindow", id, err)
		}
	}
}

func TestEnumerateLeagueWindowsIsContiguous(t *testing.T) {
	t.Parallel()

	start := time.Date(2019, 2, 19, 12, 0, 0, 0, time.UTC)
	end := time.Date(2019, 2, 19, 18, 0, 0, 0, time.UTC)

	got := EnumerateLeagueWindows(start, end)
	want := []time.Time{
		time.Date(2019, 2, 19, 14, 0, 0, 0, time.UTC),
		time.Date(2019, 2, 19, 16, 0, 0, 0, time.UTC),
		time.Date(2019, 2, 19, 18, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("window %d = %s, want %s", i, got[i], want[i])
		}
	}

	if ws := EnumerateLeagueWindows(start, start); len(ws) != 0 {
		t.Fatalf("expected empty enumeration, got %v", ws)
	}
}

func TestXWindowMergedPeriodException(t *testing.T) {
	t.Parallel()

	april := time.Date(2018, 4, 15, 3, 0, 0, 0, time.UTC)
	may := time.Date(2018, 5, 31, 23, 59, 0, 0, time.UTC)

	if got := XWindowOf(april); !got.Equal(XEpoch) {
		t.Fatalf("XWindowOf(april 2018) = %s, want %s", got, XEpoch)
	}
	if got := XWindowOf(may); !got.Equal(XEpoch) {
		t.Fatalf("XWindowOf(may 2018) = %s, want %s", got, XEpoch)
	}

	if id := XWindowID(XEpoch); id != "180401T00_180601T00" {
		t.Fatalf("merged window id = %q", id)
	}

	june := time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := XWindowEnd(XEpoch); !got.Equal(june) {
		t.Fatalf("merged window end = %s, want %s", got, june)
	}
}

func TestXWindowIDRegularMonth(t *testing.T) {
	t.Parallel()

	start := time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)
	if id := XWindowID(start); id != "190401T00_190501T00" {
		t.Fatalf("XWindowID = %q", id)
	}
}

func TestEnumerateXWindowsSkipsMergedMonth(t *testing.T) {
	t.Parallel()

	end := time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC)
	got := EnumerateXWindows(time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC), end)

	want := []time.Time{
		XEpoch,
		time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows (%v), want %d", len(got), got, len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("window %d = %s, want %s", i, got[i], want[i])
		}
	}
}
