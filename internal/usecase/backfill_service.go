package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

const xRankingPages = 5

// BackfillConfig tunes pacing and the not-finalized detection for historical
// catch-up runs. Pauses are jittered so replaying years of windows does not
// look like a crawler hammering the API.
type BackfillConfig struct {
	WindowIntervalMin    time.Duration
	WindowIntervalMax    time.Duration
	GroupTypeIntervalMin time.Duration
	GroupTypeIntervalMax time.Duration
	PageInterval         time.Duration
	// XIncompleteThreshold is the page size at or below which a month is
	// considered not finalized upstream yet.
	XIncompleteThreshold int
	// MaxWindows caps how many windows one run attempts; zero means all.
	MaxWindows int
}

func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{
		WindowIntervalMin:    60 * time.Second,
		WindowIntervalMax:    120 * time.Second,
		GroupTypeIntervalMin: 2 * time.Second,
		GroupTypeIntervalMax: 10 * time.Second,
		PageInterval:         10 * time.Second,
		XIncompleteThreshold: 1,
	}
}

func NormalizeBackfillConfig(cfg BackfillConfig) BackfillConfig {
	defaults := DefaultBackfillConfig()
	if cfg.WindowIntervalMin <= 0 {
		cfg.WindowIntervalMin = defaults.WindowIntervalMin
	}
	if cfg.WindowIntervalMax < cfg.WindowIntervalMin {
		cfg.WindowIntervalMax = cfg.WindowIntervalMin
	}
	if cfg.GroupTypeIntervalMin <= 0 {
		cfg.GroupTypeIntervalMin = defaults.GroupTypeIntervalMin
	}
	if cfg.GroupTypeIntervalMax < cfg.GroupTypeIntervalMin {
		cfg.GroupTypeIntervalMax = cfg.GroupTypeIntervalMin
	}
	if cfg.PageInterval <= 0 {
		cfg.PageInterval = defaults.PageInterval
	}
	if cfg.XIncompleteThreshold < 1 {
		cfg.XIncompleteThreshold = defaults.XIncompleteThreshold
	}
	if cfg.MaxWindows < 0 {
		cfg.MaxWindows = 0
	}
	return cfg
}

// RunSummary reports what one backfill run did, in windows.
type RunSummary struct {
	Windows       int
	Persisted     int
	MarkedMissing int
	Skipped       int
	Entries       int
}

// BackfillService replays historical windows the reconciler reports missing.
// A 404 from the upstream is authoritative "this window has no data" and is
// recorded permanently; a not-finalized X month is skipped silently; any
// other failure aborts the run so the operator sees it.
type BackfillService struct {
	reconcile      *ReconcileService
	ingest         *IngestService
	leagueRepo     ranking.LeagueRepository
	xRepo          ranking.XRepository
	leagueProvider LeagueRankingProvider
	xProvider      XRankingProvider
	logger         *logging.Logger
	cfg            BackfillConfig

	sleep    func(ctx context.Context, d time.Duration) error
	randIntn func(n int) int
}

func NewBackfillService(
	reconcile *ReconcileService,
	ingest *IngestService,
	leagueRepo ranking.LeagueRepository,
	xRepo ranking.XRepository,
	leagueProvider LeagueRankingProvider,
	xProvider XRankingProvider,
	cfg BackfillConfig,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		reconcile:      reconcile,
		ingest:         ingest,
		leagueRepo:     leagueRepo,
		xRepo:          xRepo,
		leagueProvider: leagueProvider,
		xProvider:      xProvider,
		logger:         logger,
		cfg:            NormalizeBackfillConfig(cfg),
		sleep:          sleepContext,
		randIntn:       rand.Intn,
	}
}

// Run dispatches a backfill over one timeline kind.
func (s *BackfillService) Run(ctx context.Context, kind ranking.Kind) (RunSummary, error) {
	switch kind {
	case ranking.KindLeague:
		return s.RunLeague(ctx)
	case ranking.KindX:
		return s.RunX(ctx)
	default:
		return RunSummary{}, fmt.Errorf("unsupported backfill kind %q", kind)
	}
}

// RunLeague fetches every missing league window, both group types per
// window. A 404 on either group type marks the whole window permanently
// missing and skips its partner; pair data without team data has never been
// observed upstream.
func (s *BackfillService) RunLeague(ctx context.Context) (RunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.RunLeague")
	defer span.End()

	missing, err := s.reconcile.FindMissingLeagueWindows(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if s.cfg.MaxWindows > 0 && len(missing) > s.cfg.MaxWindows {
		missing = missing[:s.cfg.MaxWindows]
	}

	summary := RunSummary{Windows: len(missing)}
	s.logger.InfoContext(ctx, "league backfill starting", "windows", len(missing))

	for i, window := range missing {
		if i > 0 {
			if err := s.pause(ctx, s.cfg.WindowIntervalMin, s.cfg.WindowIntervalMax); err != nil {
				return summary, err
			}
		}

		windowID := ranking.LeagueWindowID(window)
		notFound := false
		for j, groupType := range []ranking.GroupType{ranking.GroupTypeTeam, ranking.GroupTypePair} {
			if j > 0 {
				if err := s.pause(ctx, s.cfg.GroupTypeIntervalMin, s.cfg.GroupTypeIntervalMax); err != nil {
					return summary, err
				}
			}

			leagueID := windowID + string(groupType)
			payload, err := s.leagueProvider.FetchLeagueRanking(ctx, leagueID)
			if err != nil {
				if IsUpstreamNotFound(err) {
					s.logger.InfoContext(ctx, "league window has no upstream data", "league_id", leagueID)
					if markErr := s.leagueRepo.MarkMissing(ctx, window); markErr != nil {
						return summary, fmt.Errorf("mark league window missing window_id=%s: %w", windowID, markErr)
					}
					summary.MarkedMissing++
					notFound = true
					break
				}
				return summary, fmt.Errorf("league backfill aborted at window %s: %w", leagueID, err)
			}

			persisted, err := s.ingest.IngestLeagueWindow(ctx, payload)
			if err != nil {
				return summary, fmt.Errorf("league backfill aborted at window %s: %w", leagueID, err)
			}
			summary.Entries += persisted
		}
		if !notFound {
			summary.Persisted++
		}
	}

	s.logger.InfoContext(ctx, "league backfill finished",
		"windows", summary.Windows,
		"persisted", summary.Persisted,
		"marked_missing", summary.MarkedMissing,
		"entries", summary.Entries,
	)
	return summary, nil
}

// RunX fetches every missing X window: four rules, five pages each. A month
// with any page at or below the incomplete threshold has not been finalized
// upstream; it is skipped without a sentinel so a later run retries it.
func (s *BackfillService) RunX(ctx context.Context) (RunSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.RunX")
	defer span.End()

	missing, err := s.reconcile.FindMissingXWindows(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	if s.cfg.MaxWindows > 0 && len(missing) > s.cfg.MaxWindows {
		missing = missing[:s.cfg.MaxWindows]
	}

	summary := RunSummary{Windows: len(missing)}
	s.logger.InfoContext(ctx, "x backfill starting", "windows", len(missing))

	for i, window := range missing {
		if i > 0 {
			if err := s.pause(ctx, s.cfg.WindowIntervalMin, s.cfg.WindowIntervalMax); err != nil {
				return summary, err
			}
		}

		entries, err := s.fetchXWindow(ctx, window)
		if err != nil {
			switch {
			case errors.Is(err, ErrRankingNotReady):
				s.logger.InfoContext(ctx, "x window not finalized upstream, skipping", "window_id", ranking.XWindowID(window))
				summary.Skipped++
				continue
			case IsUpstreamNotFound(err):
				s.logger.InfoContext(ctx, "x window has no upstream data", "window_id", ranking.XWindowID(window))
				if markErr := s.xRepo.MarkMissing(ctx, window); markErr != nil {
					return summary, fmt.Errorf("mark x window missing window_id=%s: %w", ranking.XWindowID(window), markErr)
				}
				summary.MarkedMissing++
				continue
			default:
				return summary, fmt.Errorf("x backfill aborted at window %s: %w", ranking.XWindowID(window), err)
			}
		}

		summary.Persisted++
		summary.Entries += entries
	}

	s.logger.InfoContext(ctx, "x backfill finished",
		"windows", summary.Windows,
		"persisted", summary.Persisted,
		"marked_missing", summary.MarkedMissing,
		"skipped", summary.Skipped,
		"entries", summary.Entries,
	)
	return summary, nil
}

func (s *BackfillService) fetchXWindow(ctx context.Context, window time.Time) (int, error) {
	windowID := ranking.XWindowID(window)
	batch := NewXWindowBatch(window)

	for ruleIdx, rule := range ranking.RankedRules {
		for page := 1; page <= xRankingPages; page++ {
			if ruleIdx > 0 || page > 1 {
				if err := s.sleep(ctx, s.cfg.PageInterval); err != nil {
					return 0, err
				}
			}

			payload, err := s.xProvider.FetchXRankingPage(ctx, windowID, rule.Key, page)
			if err != nil {
				return 0, err
			}
			// Any short page means the upstream has not finalized the
			// month; partial data must never be committed as complete.
			if len(payload.Entries) <= s.cfg.XIncompleteThreshold {
				return 0, ErrRankingNotReady
			}
			batch.AddPage(rule.ID, payload)
		}
	}

	return s.ingest.IngestXWindow(ctx, batch)
}

func (s *BackfillService) pause(ctx context.Context, min, max time.Duration) error {
	d := min
	if spread := max - min; spread > 0 {
		d += time.Duration(s.randIntn(int(spread)))
	}
	return s.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
