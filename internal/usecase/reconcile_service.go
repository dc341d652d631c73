package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

// globalSplatfestOverlap is how many regional schedules must cover an instant
// for it to count as a global Splatfest. During those, the upstream suspends
// league rankings worldwide, so the windows are not gaps.
const globalSplatfestOverlap = 3

// ReconcileService computes which timeline windows ought to exist but do not.
// A window already marked permanently missing is not reported again.
type ReconcileService struct {
	leagueRepo    ranking.LeagueRepository
	xRepo         ranking.XRepository
	splatfestRepo ranking.SplatfestRepository
	logger        *logging.Logger
	now           func() time.Time
}

func NewReconcileService(
	leagueRepo ranking.LeagueRepository,
	xRepo ranking.XRepository,
	splatfestRepo ranking.SplatfestRepository,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		leagueRepo:    leagueRepo,
		xRepo:         xRepo,
		splatfestRepo: splatfestRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// FindMissingLeagueWindows lists league window starts between the timeline
// epoch and the latest finalized window that have no rows, no missing-marker,
// and were not suppressed by a global Splatfest.
func (s *ReconcileService) FindMissingLeagueWindows(ctx context.Context) ([]time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.FindMissingLeagueWindows")
	defer span.End()

	// The newest ranking the upstream serves is the one that ended two
	// hours ago.
	latest := ranking.LeagueWindowOf(s.now().UTC().Add(-ranking.LeagueWindowDuration))

	existing, err := s.leagueRepo.ListStartTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list league start times: %w", err)
	}
	sentinels, err := s.leagueRepo.ListMissingStartTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list missing league start times: %w", err)
	}
	schedules, err := s.splatfestRepo.ListSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list splatfest schedules: %w", err)
	}

	known := timeSet(existing)
	for _, t := range sentinels {
		known[t.Unix()] = struct{}{}
	}

	out := make([]time.Time, 0)
	// Epoch itself counts: enumerate from one window before it.
	for _, window := range ranking.EnumerateLeagueWindows(ranking.LeagueEpoch.Add(-ranking.LeagueWindowDuration), latest) {
		if _, ok := known[window.Unix()]; ok {
			continue
		}
		if isGlobalSplatfest(schedules, window) {
			continue
		}
		out = append(out, window)
	}

	s.logger.DebugContext(ctx, "league gap scan finished",
		"existing", len(existing),
		"sentinels", len(sentinels),
		"missing", len(out),
	)
	return out, nil
}

// FindMissingXWindows lists X window starts between the X epoch and the last
// completed month that have no rows and no missing-marker.
func (s *ReconcileService) FindMissingXWindows(ctx context.Context) ([]time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.FindMissingXWindows")
	defer span.End()

	// The current month is still accumulating; the newest complete window
	// is the one whose end is in the past.
	now := s.now().UTC()
	latest := ranking.XWindowOf(now)
	if ranking.XWindowEnd(latest).After(now) {
		latest = ranking.XWindowOf(latest.Add(-time.Hour))
	}
	if latest.Before(ranking.XEpoch) {
		return nil, nil
	}

	existing, err := s.xRepo.ListStartTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list x start times: %w", err)
	}
	sentinels, err := s.xRepo.ListMissingStartTimes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list missing x start times: %w", err)
	}

	known := timeSet(existing)
	for _, t := range sentinels {
		known[t.Unix()] = struct{}{}
	}

	out := make([]time.Time, 0)
	for _, window := range ranking.EnumerateXWindows(ranking.XEpoch.AddDate(0, -1, 0), latest) {
		if _, ok := known[window.Unix()]; ok {
			continue
		}
		out = append(out, window)
	}

	s.logger.DebugContext(ctx, "x gap scan finished",
		"existing", len(existing),
		"sentinels", len(sentinels),
		"missing", len(out),
	)
	return out, nil
}

func timeSet(times []time.Time) map[int64]struct{} {
	out := make(map[int64]struct{}, len(times))
	for _, t := range times {
		out[t.Unix()] = struct{}{}
	}
	return out
}

// isGlobalSplatfest reports whether at least three regional schedules cover
// the window start, i.e. the event ran in every region at once.
func isGlobalSplatfest(schedules []ranking.SplatfestSchedule, windowStart time.Time) bool {
	overlapping := 0
	for _, schedule := range schedules {
		if !windowStart.Before(schedule.StartTime) && windowStart.Before(schedule.EndTime) {
			overlapping++
			if overlapping >= globalSplatfestOverlap {
				return true
			}
		}
	}
	return false
}
