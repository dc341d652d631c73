package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

// LiveSyncConfig tunes the scheduled forward-fill run.
type LiveSyncConfig struct {
	LeagueEnabled    bool
	XEnabled         bool
	SplatfestEnabled bool

	// MinUpcomingSchedules is how many future rotation rows must exist
	// before the mirror top-up is skipped.
	MinUpcomingSchedules int
	// SplatfestFetchLimit caps how many finished events one run ingests.
	SplatfestFetchLimit int
	// SplatfestInterval is the pause between event leaderboard fetches.
	SplatfestInterval time.Duration
	// XIncompleteThreshold mirrors the backfill setting; the freshest month
	// is routinely not finalized yet.
	XIncompleteThreshold int
	PageInterval         time.Duration
}

func DefaultLiveSyncConfig() LiveSyncConfig {
	return LiveSyncConfig{
		LeagueEnabled:        true,
		XEnabled:             true,
		SplatfestEnabled:     true,
		MinUpcomingSchedules: 6,
		SplatfestFetchLimit:  5,
		SplatfestInterval:    2 * time.Minute,
		XIncompleteThreshold: 1,
		PageInterval:         10 * time.Second,
	}
}

func NormalizeLiveSyncConfig(cfg LiveSyncConfig) LiveSyncConfig {
	defaults := DefaultLiveSyncConfig()
	if cfg.MinUpcomingSchedules <= 0 {
		cfg.MinUpcomingSchedules = defaults.MinUpcomingSchedules
	}
	if cfg.SplatfestFetchLimit <= 0 {
		cfg.SplatfestFetchLimit = defaults.SplatfestFetchLimit
	}
	if cfg.SplatfestInterval <= 0 {
		cfg.SplatfestInterval = defaults.SplatfestInterval
	}
	if cfg.XIncompleteThreshold < 1 {
		cfg.XIncompleteThreshold = defaults.XIncompleteThreshold
	}
	if cfg.PageInterval <= 0 {
		cfg.PageInterval = defaults.PageInterval
	}
	return cfg
}

// LiveSyncService keeps the timelines current: the just-finalized league
// window every two hours, the rotation table topped up from the mirror, the
// last complete X month, and finished Splatfest leaderboards.
type LiveSyncService struct {
	ingest           *IngestService
	leagueProvider   LeagueRankingProvider
	xProvider        XRankingProvider
	splatfestProv    SplatfestRankingProvider
	scheduleProvider ScheduleProvider
	splatfestRepo    ranking.SplatfestRepository
	scheduleRepo     ranking.ScheduleRepository
	logger           *logging.Logger
	cfg              LiveSyncConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewLiveSyncService(
	ingest *IngestService,
	leagueProvider LeagueRankingProvider,
	xProvider XRankingProvider,
	splatfestProvider SplatfestRankingProvider,
	scheduleProvider ScheduleProvider,
	splatfestRepo ranking.SplatfestRepository,
	scheduleRepo ranking.ScheduleRepository,
	cfg LiveSyncConfig,
	logger *logging.Logger,
) *LiveSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LiveSyncService{
		ingest:           ingest,
		leagueProvider:   leagueProvider,
		xProvider:        xProvider,
		splatfestProv:    splatfestProvider,
		scheduleProvider: scheduleProvider,
		splatfestRepo:    splatfestRepo,
		scheduleRepo:     scheduleRepo,
		logger:           logger,
		cfg:              NormalizeLiveSyncConfig(cfg),
		now:              time.Now,
		sleep:            sleepContext,
	}
}

// Run executes every enabled sync concurrently. Kinds fail independently;
// the first error is returned after all have finished.
func (s *LiveSyncService) Run(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.Run")
	defer span.End()

	p := pool.New().WithContext(ctx)
	if s.cfg.LeagueEnabled {
		p.Go(func(ctx context.Context) error {
			if err := s.SyncLeague(ctx); err != nil {
				return err
			}
			return s.TopUpSchedules(ctx)
		})
	}
	if s.cfg.XEnabled {
		p.Go(s.SyncX)
	}
	if s.cfg.SplatfestEnabled {
		p.Go(s.SyncSplatfests)
	}
	return p.Wait()
}

// SyncLeague ingests the newest finalized league window, both group types.
// A 404 here is normal right after the window closes; it is left for the
// backfill to settle.
func (s *LiveSyncService) SyncLeague(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.SyncLeague")
	defer span.End()

	window := ranking.LeagueWindowOf(s.now().UTC().Add(-ranking.LeagueWindowDuration))
	windowID := ranking.LeagueWindowID(window)

	for _, groupType := range []ranking.GroupType{ranking.GroupTypeTeam, ranking.GroupTypePair} {
		leagueID := windowID + string(groupType)
		payload, err := s.leagueProvider.FetchLeagueRanking(ctx, leagueID)
		if err != nil {
			if IsUpstreamNotFound(err) {
				s.logger.InfoContext(ctx, "league window not published yet", "league_id", leagueID)
				return nil
			}
			return fmt.Errorf("sync league window %s: %w", leagueID, err)
		}

		persisted, err := s.ingest.IngestLeagueWindow(ctx, payload)
		if err != nil {
			return fmt.Errorf("sync league window %s: %w", leagueID, err)
		}
		s.logger.InfoContext(ctx, "league window ingested", "league_id", leagueID, "entries", persisted)
	}
	return nil
}

// TopUpSchedules refreshes the rotation table from the mirror when fewer
// than the configured number of future rows remain.
func (s *LiveSyncService) TopUpSchedules(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.TopUpSchedules")
	defer span.End()

	now := s.now().UTC()
	upcoming, err := s.scheduleRepo.CountUpcoming(ctx, now)
	if err != nil {
		return fmt.Errorf("count upcoming schedules: %w", err)
	}
	if upcoming >= s.cfg.MinUpcomingSchedules {
		s.logger.DebugContext(ctx, "enough future schedules, skipping top-up", "upcoming", upcoming)
		return nil
	}

	fetched, err := s.scheduleProvider.FetchLeagueSchedules(ctx)
	if err != nil {
		return fmt.Errorf("top up schedules: %w", err)
	}

	schedules := make([]ranking.LeagueSchedule, 0, len(fetched))
	for _, item := range fetched {
		ruleID, ok := ranking.FindRuleID(item.RuleKey)
		if !ok {
			s.logger.WarnContext(ctx, "unknown rule key in schedule payload", "rule_key", item.RuleKey)
			continue
		}
		schedules = append(schedules, ranking.LeagueSchedule{
			StartTime: item.StartTime,
			RuleID:    ruleID,
			StageIDs:  item.StageIDs,
		})
	}

	if err := s.scheduleRepo.InsertSchedules(ctx, schedules); err != nil {
		return fmt.Errorf("top up schedules: %w", err)
	}
	s.logger.InfoContext(ctx, "schedule table topped up", "inserted", len(schedules))
	return nil
}

// SyncX ingests the last complete month's X ranking. Right after a month
// rolls over the upstream often has not finalized it yet; that run skips and
// a later one picks the month up.
func (s *LiveSyncService) SyncX(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.SyncX")
	defer span.End()

	now := s.now().UTC()
	window := ranking.XWindowOf(now)
	if ranking.XWindowEnd(window).After(now) {
		window = ranking.XWindowOf(window.Add(-time.Hour))
	}
	if window.Before(ranking.XEpoch) {
		return nil
	}
	windowID := ranking.XWindowID(window)

	batch := NewXWindowBatch(window)
	for ruleIdx, rule := range ranking.RankedRules {
		for page := 1; page <= xRankingPages; page++ {
			if ruleIdx > 0 || page > 1 {
				if err := s.sleep(ctx, s.cfg.PageInterval); err != nil {
					return err
				}
			}

			payload, err := s.xProvider.FetchXRankingPage(ctx, windowID, rule.Key, page)
			if err != nil {
				return fmt.Errorf("sync x window %s rule=%s page=%d: %w", windowID, rule.Key, page, err)
			}
			// Any short page means the month is not finalized; the next
			// run picks it up whole.
			if len(payload.Entries) <= s.cfg.XIncompleteThreshold {
				s.logger.InfoContext(ctx, "x window not finalized upstream, skipping",
					"window_id", windowID, "rule_key", rule.Key, "page", page)
				return nil
			}
			batch.AddPage(rule.ID, payload)
		}
	}

	persisted, err := s.ingest.IngestXWindow(ctx, batch)
	if err != nil {
		return fmt.Errorf("sync x window %s: %w", windowID, err)
	}
	s.logger.InfoContext(ctx, "x window ingested", "window_id", windowID, "entries", persisted)
	return nil
}

// SyncSplatfests refreshes event schedules from the mirror, then ingests
// leaderboards for finished events that have none yet, oldest first.
func (s *LiveSyncService) SyncSplatfests(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.SyncSplatfests")
	defer span.End()

	fetched, err := s.scheduleProvider.FetchSplatfestSchedules(ctx)
	if err != nil {
		return fmt.Errorf("sync splatfest schedules: %w", err)
	}

	schedules := make([]ranking.SplatfestSchedule, 0, len(fetched))
	for _, item := range fetched {
		schedules = append(schedules, ranking.SplatfestSchedule(item))
	}
	if err := s.splatfestRepo.UpsertSchedules(ctx, schedules); err != nil {
		return fmt.Errorf("sync splatfest schedules: %w", err)
	}

	unfetched, err := s.splatfestRepo.ListUnfetched(ctx, s.now().UTC(), s.cfg.SplatfestFetchLimit)
	if err != nil {
		return fmt.Errorf("list unfetched splatfests: %w", err)
	}
	if len(unfetched) == 0 {
		return nil
	}
	s.logger.InfoContext(ctx, "ingesting finished splatfests", "count", len(unfetched))

	for i, schedule := range unfetched {
		if i > 0 {
			if err := s.sleep(ctx, s.cfg.SplatfestInterval); err != nil {
				return err
			}
		}

		payload, err := s.splatfestProv.FetchSplatfestRanking(ctx, schedule.Region, schedule.SplatfestID)
		if err != nil {
			if IsUpstreamNotFound(err) {
				s.logger.WarnContext(ctx, "splatfest ranking not available upstream",
					"region", schedule.Region,
					"splatfest_id", schedule.SplatfestID,
				)
				continue
			}
			return fmt.Errorf("sync splatfest region=%s splatfest_id=%d: %w", schedule.Region, schedule.SplatfestID, err)
		}

		persisted, err := s.ingest.IngestSplatfestRanking(ctx, payload, schedule.EndTime)
		if err != nil {
			return fmt.Errorf("sync splatfest region=%s splatfest_id=%d: %w", schedule.Region, schedule.SplatfestID, err)
		}
		s.logger.InfoContext(ctx, "splatfest ranking ingested",
			"region", schedule.Region,
			"splatfest_id", schedule.SplatfestID,
			"entries", persisted,
		)
	}
	return nil
}
