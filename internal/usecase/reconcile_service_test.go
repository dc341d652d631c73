package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

func leagueWindow(hours int) time.Time {
	return ranking.LeagueEpoch.Add(time.Duration(hours) * time.Hour)
}

func newReconcileService(leagueRepo *fakeLeagueRepo, xRepo *fakeXRepo, splatfestRepo *fakeSplatfestRepo, now time.Time) *ReconcileService {
	return &ReconcileService{
		leagueRepo:    leagueRepo,
		xRepo:         xRepo,
		splatfestRepo: splatfestRepo,
		logger:        logging.NewNop(),
		now:           fixedNow(now),
	}
}

func TestFindMissingLeagueWindows_ReportsInteriorGaps(t *testing.T) {
	t.Parallel()

	// Windows at 00, 04, 08 exist; 02 and 06 are gaps. At 10:00 the newest
	// finalized window is 08.
	leagueRepo := &fakeLeagueRepo{
		startTimes: []time.Time{leagueWindow(0), leagueWindow(4), leagueWindow(8)},
	}
	svc := newReconcileService(leagueRepo, &fakeXRepo{}, &fakeSplatfestRepo{}, leagueWindow(10))

	got, err := svc.FindMissingLeagueWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingLeagueWindows: %v", err)
	}

	want := []time.Time{leagueWindow(2), leagueWindow(6)}
	assertTimesEqual(t, got, want)
}

func TestFindMissingLeagueWindows_IncludesEpochGap(t *testing.T) {
	t.Parallel()

	// Only 04 exists, so the virtual gap back to the epoch produces 00 and
	// 02 as well.
	leagueRepo := &fakeLeagueRepo{
		startTimes: []time.Time{leagueWindow(4)},
	}
	svc := newReconcileService(leagueRepo, &fakeXRepo{}, &fakeSplatfestRepo{}, leagueWindow(6))

	got, err := svc.FindMissingLeagueWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingLeagueWindows: %v", err)
	}

	assertTimesEqual(t, got, []time.Time{leagueWindow(0), leagueWindow(2)})
}

func TestFindMissingLeagueWindows_SkipsSentinels(t *testing.T) {
	t.Parallel()

	leagueRepo := &fakeLeagueRepo{
		startTimes: []time.Time{leagueWindow(0), leagueWindow(4)},
		missing:    []time.Time{leagueWindow(2)},
	}
	svc := newReconcileService(leagueRepo, &fakeXRepo{}, &fakeSplatfestRepo{}, leagueWindow(6))

	got, err := svc.FindMissingLeagueWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingLeagueWindows: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no missing windows, got %v", got)
	}
}

func TestFindMissingLeagueWindows_SkipsGlobalSplatfests(t *testing.T) {
	t.Parallel()

	// The gap at 02 falls inside a Splatfest running in all three regions;
	// a two-region event does not suppress the gap at 06.
	splatfest := func(region string, fromHours, toHours int) ranking.SplatfestSchedule {
		return ranking.SplatfestSchedule{
			Region:      region,
			SplatfestID: 1,
			StartTime:   leagueWindow(fromHours),
			EndTime:     leagueWindow(toHours),
		}
	}
	leagueRepo := &fakeLeagueRepo{
		startTimes: []time.Time{leagueWindow(0), leagueWindow(4), leagueWindow(8)},
	}
	splatfestRepo := &fakeSplatfestRepo{
		schedules: []ranking.SplatfestSchedule{
			splatfest("na", 2, 4),
			splatfest("eu", 2, 4),
			splatfest("jp", 2, 4),
			splatfest("na", 6, 8),
			splatfest("eu", 6, 8),
		},
	}
	svc := newReconcileService(leagueRepo, &fakeXRepo{}, splatfestRepo, leagueWindow(10))

	got, err := svc.FindMissingLeagueWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingLeagueWindows: %v", err)
	}

	assertTimesEqual(t, got, []time.Time{leagueWindow(6)})
}

func TestFindMissingXWindows_ReportsGapsIncludingMergedWindow(t *testing.T) {
	t.Parallel()

	// 2018-04 (the merged window) and 2018-07 exist. In mid September the
	// newest complete month is August, so June and August are gaps.
	xRepo := &fakeXRepo{
		startTimes: []time.Time{
			time.Date(2018, time.April, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2018, time.July, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	now := time.Date(2018, time.September, 15, 12, 0, 0, 0, time.UTC)
	svc := newReconcileService(&fakeLeagueRepo{}, xRepo, &fakeSplatfestRepo{}, now)

	got, err := svc.FindMissingXWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingXWindows: %v", err)
	}

	want := []time.Time{
		time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	assertTimesEqual(t, got, want)
}

func TestFindMissingXWindows_NothingBeforeFirstCompleteMonth(t *testing.T) {
	t.Parallel()

	// During the merged 2018-04/05 period no X window has completed yet.
	now := time.Date(2018, time.May, 10, 0, 0, 0, 0, time.UTC)
	svc := newReconcileService(&fakeLeagueRepo{}, &fakeXRepo{}, &fakeSplatfestRepo{}, now)

	got, err := svc.FindMissingXWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingXWindows: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no missing windows, got %v", got)
	}
}

func TestFindMissingXWindows_SkipsSentinels(t *testing.T) {
	t.Parallel()

	xRepo := &fakeXRepo{
		missing: []time.Time{time.Date(2018, time.April, 1, 0, 0, 0, 0, time.UTC)},
	}
	now := time.Date(2018, time.July, 2, 0, 0, 0, 0, time.UTC)
	svc := newReconcileService(&fakeLeagueRepo{}, xRepo, &fakeSplatfestRepo{}, now)

	got, err := svc.FindMissingXWindows(context.Background())
	if err != nil {
		t.Fatalf("FindMissingXWindows: %v", err)
	}

	assertTimesEqual(t, got, []time.Time{time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC)})
}

func assertTimesEqual(t *testing.T, got, want []time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d windows %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("window %d = %v, want %v", i, got[i], want[i])
		}
	}
}
