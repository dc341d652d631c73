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

type XRankingRepository struct {
	db *sqlx.DB
}

func NewXRankingRepository(db *sqlx.DB) *XRankingRepository {
	return &XRankingRepository{db: db}
}

// IngestWindow writes one month's rows, across all rules and pages, in a
// single transaction together with the name sightings the pages carried.
func (r *XRankingRepository) IngestWindow(ctx context.Context, entries []ranking.XEntry, names []playername.Record) error {
	if len(entries) == 0 && len(names) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx ingest x window: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range entries {
		insertModel := xRankingInsertModel{
			StartTime: entry.StartTime,
			RuleID:    entry.RuleID,
			PlayerID:  entry.PlayerID,
			WeaponID:  entry.WeaponID,
			Rank:      entry.Rank,
			Rating:    entry.Rating,
		}
		query, args, err := qb.InsertModel("x_rankings", insertModel, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert x ranking query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert x ranking player_id=%s: %w", entry.PlayerID, err)
		}
	}

	if err := upsertKnownNamesTx(ctx, tx, names); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest x window: %w", err)
	}
	return nil
}

func (r *XRankingRepository) ListStartTimes(ctx context.Context) ([]time.Time, error) {
	query, _, err := qb.Select("DISTINCT start_time").
		From("x_rankings").
		OrderBy("start_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list x start times query: %w", err)
	}

	var rows []time.Time
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list x start times: %w", err)
	}
	return utcTimes(rows), nil
}

func (r *XRankingRepository) ListMissingStartTimes(ctx context.Context) ([]time.Time, error) {
	query, _, err := qb.Select("start_time").
		From("missing_x_rankings").
		OrderBy("start_time").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list missing x start times query: %w", err)
	}

	var rows []time.Time
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list missing x start times: %w", err)
	}
	return utcTimes(rows), nil
}

func (r *XRankingRepository) MarkMissing(ctx context.Context, startTime time.Time) error {
	query, args, err := qb.InsertInto("missing_x_rankings").
		Columns("start_time").
		Values(startTime).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark missing x window query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark missing x window: %w", err)
	}
	return nil
}
