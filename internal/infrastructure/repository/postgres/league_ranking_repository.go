package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/yukinkling/splatoon-stats/internal/domain/playername"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	qb "github.com/yukinkling/splatoon-stats/internal/platform/querybuilder"
)

type LeagueRankingRepository struct {
	db *sqlx.DB
}

func NewLeagueRankingRepository(db *sqlx.DB) *LeagueRankingRepository {
	return &LeagueRankingRepository{db: db}
}

// IngestWindow writes one window's rows and name sightings in a single
// transaction. Re-ingesting a window is a no-op for rows that already exist.
func (r *LeagueRankingRepository) IngestWindow(ctx context.Context, entries []ranking.LeagueEntry, names []playername.Record) error {
	if len(entries) == 0 && len(names) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx ingest league window: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range entries {
		insertModel := leagueRankingInsertModel{
			StartTime: entry.StartTime,
			GroupType: string(entry.GroupType),
			GroupID:   entry.GroupID,
			PlayerID:  entry.PlayerID,
			WeaponID:  entry.WeaponID,
			Rank:      entry.Rank,
			Rating:    entry.Rating,
		}
		query, args, err := qb.InsertModel("league_rankings", insertModel, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert league ranking query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert league ranking player_id=%s: %w", entry.PlayerID, err)
		}
	}

	if err := upsertKnownNamesTx(ctx, tx, names); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest league window: %w", err)
	}
	return nil
}

func (r *LeagueRankingRepository) ListStartTimes(ctx context.Context) ([]time.Time, error) {
	query, _, err := qb.Select("DISTINCT start_time").
		From("league_rankings").
		OrderBy("start_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league start times query: %w", err)
	}

	var rows []time.Time
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list league start times: %w", err)
	}
	return utcTimes(rows), nil
}

func (r *LeagueRankingRepository) ListMissingStartTimes(ctx context.Context) ([]time.Time, error) {
	query, _, err := qb.Select("start_time").
		From("missing_league_rankings").
		OrderBy("start_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list missing league start times query: %w", err)
	}

	var rows []time.Time
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list missing league start times: %w", err)
	}
	return utcTimes(rows), nil
}

func (r *LeagueRankingRepository) MarkMissing(ctx context.Context, startTime time.Time) error {
	query, args, err := qb.InsertInto("missing_league_rankings").
		Columns("start_time").
		Values(startTime).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark missing league window query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark missing league window: %w", err)
	}
	return nil
}

func utcTimes(times []time.Time) []time.Time {
	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		out = append(out, t.UTC())
	}
	return out
}
