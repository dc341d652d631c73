package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/yukinkling/splatoon-stats/internal/domain/playername"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	"github.com/yukinkling/splatoon-stats/internal/platform/logging"
)

// IngestService turns upstream ranking payloads into timeline rows. Each
// window is written in one transaction by the repository; cheater-flagged
// entries are dropped before they reach storage.
type IngestService struct {
	leagueRepo    ranking.LeagueRepository
	xRepo         ranking.XRepository
	splatfestRepo ranking.SplatfestRepository
	nameRepo      playername.Repository
	logger        *logging.Logger
}

func NewIngestService(
	leagueRepo ranking.LeagueRepository,
	xRepo ranking.XRepository,
	splatfestRepo ranking.SplatfestRepository,
	nameRepo playername.Repository,
	logger *logging.Logger,
) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{
		leagueRepo:    leagueRepo,
		xRepo:         xRepo,
		splatfestRepo: splatfestRepo,
		nameRepo:      nameRepo,
		logger:        logger,
	}
}

// IngestLeagueWindow persists one league window's global ranking and returns
// the number of player rows handed to storage. The league API carries no
// player names, so the ledger is untouched.
func (s *IngestService) IngestLeagueWindow(ctx context.Context, payload ExternalLeagueRanking) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.IngestLeagueWindow")
	defer span.End()

	entries := make([]ranking.LeagueEntry, 0, len(payload.Groups)*4)
	for _, group := range payload.Groups {
		if group.Cheater {
			continue
		}
		for _, member := range group.Members {
			if member.Cheater || member.PlayerID == "" {
				continue
			}
			entries = append(entries, ranking.LeagueEntry{
				StartTime: payload.StartTime,
				GroupType: payload.GroupType,
				GroupID:   group.GroupID,
				PlayerID:  member.PlayerID,
				WeaponID:  member.WeaponID,
				Rank:      group.Rank,
				Rating:    group.Point,
			})
		}
	}

	if err := s.leagueRepo.IngestWindow(ctx, entries, nil); err != nil {
		return 0, errors.Mark(fmt.Errorf("ingest league window league_id=%s: %w", payload.LeagueID, err), ErrIngestionFailed)
	}
	return len(entries), nil
}

// XWindowBatch accumulates one month's pages across every ranked rule so the
// whole window commits in a single transaction.
type XWindowBatch struct {
	StartTime time.Time

	entries []ranking.XEntry
	names   []playername.Record
}

func NewXWindowBatch(startTime time.Time) *XWindowBatch {
	return &XWindowBatch{StartTime: startTime}
}

// AddPage folds one page of one rule into the batch. Name sightings are
// stamped with the window's end, the last instant the name was known in use.
func (b *XWindowBatch) AddPage(ruleID int, page ExternalXRankingPage) {
	lastUsed := ranking.XWindowEnd(b.StartTime)
	for _, entry := range page.Entries {
		if entry.Cheater || entry.PlayerID == "" {
			continue
		}
		b.entries = append(b.entries, ranking.XEntry{
			StartTime: b.StartTime,
			RuleID:    ruleID,
			PlayerID:  entry.PlayerID,
			WeaponID:  entry.WeaponID,
			Rank:      entry.Rank,
			Rating:    entry.XPower,
		})
		if entry.PlayerName != "" {
			b.names = append(b.names, playername.Record{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				LastUsed:   lastUsed,
			})
		}
	}
}

func (b *XWindowBatch) Len() int {
	return len(b.entries)
}

// IngestXWindow persists a completed batch and refreshes the latest-name
// view. The refresh is best effort; readers just see slightly stale names
// until the next one succeeds.
func (s *IngestService) IngestXWindow(ctx context.Context, batch *XWindowBatch) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.IngestXWindow")
	defer span.End()

	if err := s.xRepo.IngestWindow(ctx, batch.entries, batch.names); err != nil {
		return 0, errors.Mark(fmt.Errorf("ingest x window start_time=%s: %w", batch.StartTime.Format(time.RFC3339), err), ErrIngestionFailed)
	}
	s.refreshLatestNames(ctx)
	return len(batch.entries), nil
}

// IngestSplatfestRanking persists a finished event's leaderboard. endTime is
// the event end, used as the LastUsed stamp for name sightings.
func (s *IngestService) IngestSplatfestRanking(ctx context.Context, payload ExternalSplatfestRanking, endTime time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.IngestSplatfestRanking")
	defer span.End()

	entries := make([]ranking.SplatfestEntry, 0, len(payload.Entries))
	names := make([]playername.Record, 0, len(payload.Entries))
	for _, entry := range payload.Entries {
		if entry.Cheater || entry.PlayerID == "" {
			continue
		}
		entries = append(entries, ranking.SplatfestEntry{
			Region:      payload.Region,
			SplatfestID: payload.SplatfestID,
			Team:        entry.Team,
			PlayerID:    entry.PlayerID,
			WeaponID:    entry.WeaponID,
			Rank:        entry.Rank,
			Rating:      entry.Score,
		})
		if entry.PlayerName != "" {
			names = append(names, playername.Record{
				PlayerID:   entry.PlayerID,
				PlayerName: entry.PlayerName,
				LastUsed:   endTime,
			})
		}
	}

	if err := s.splatfestRepo.IngestRanking(ctx, entries, names); err != nil {
		return 0, errors.Mark(fmt.Errorf("ingest splatfest ranking region=%s splatfest_id=%d: %w", payload.Region, payload.SplatfestID, err), ErrIngestionFailed)
	}
	s.refreshLatestNames(ctx)
	return len(entries), nil
}

func (s *IngestService) refreshLatestNames(ctx context.Context) {
	if s.nameRepo == nil {
		return
	}
	if err := s.nameRepo.RefreshLatestNames(ctx); err != nil {
		s.logger.WarnContext(ctx, "refresh latest player names failed", "error", err)
	}
}
