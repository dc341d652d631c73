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

type SplatfestRepository struct {
	db *sqlx.DB
}

func NewSplatfestRepository(db *sqlx.DB) *SplatfestRepository {
	return &SplatfestRepository{db: db}
}

func (r *SplatfestRepository) UpsertSchedules(ctx context.Context, schedules []ranking.SplatfestSchedule) error {
	for _, schedule := range schedules {
		insertModel := splatfestScheduleTableModel{
			Region:      schedule.Region,
			SplatfestID: schedule.SplatfestID,
			StartTime:   schedule.StartTime,
			EndTime:     schedule.EndTime,
			TeamAlpha:   schedule.TeamAlpha,
			TeamBravo:   schedule.TeamBravo,
		}
		query, args, err := qb.InsertModel("splatfest_schedules", insertModel, `ON CONFLICT (region, splatfest_id)
DO UPDATE SET
    start_time = EXCLUDED.start_time,
    end_time = EXCLUDED.end_time,
    team_alpha = EXCLUDED.team_alpha,
    team_bravo = EXCLUDED.team_bravo`)
		if err != nil {
			return fmt.Errorf("build upsert splatfest schedule query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert splatfest schedule region=%s splatfest_id=%d: %w", schedule.Region, schedule.SplatfestID, err)
		}
	}
	return nil
}

func (r *SplatfestRepository) ListSchedules(ctx context.Context) ([]ranking.SplatfestSchedule, error) {
	query, _, err := qb.Select("*").
		From("splatfest_schedules").
		OrderBy("start_time", "region").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list splatfest schedules query: %w", err)
	}

	var rows []splatfestScheduleTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list splatfest schedules: %w", err)
	}
	return mapSplatfestSchedules(rows), nil
}

// ListUnfetched returns past schedules with no leaderboard rows yet, oldest
// first. SplatNet only serves rankings after the event ends, so callers pass
// the current time as the cutoff.
func (r *SplatfestRepository) ListUnfetched(ctx context.Context, before time.Time, limit int) ([]ranking.SplatfestSchedule, error) {
	const query = `
WITH past_splatfests AS (
    SELECT region, splatfest_id FROM splatfest_schedules
        WHERE end_time < $1
),
fetched_splatfests AS (
    SELECT region, splatfest_id FROM splatfest_rankings
        GROUP BY region, splatfest_id
),
unfetched AS (
    SELECT * FROM past_splatfests
        EXCEPT SELECT * FROM fetched_splatfests
)
SELECT s.region, s.splatfest_id, s.start_time, s.end_time, s.team_alpha, s.team_bravo
    FROM splatfest_schedules s
    JOIN unfetched u ON s.region = u.region AND s.splatfest_id = u.splatfest_id
    ORDER BY s.end_time, s.region
    LIMIT $2`

	var rows []splatfestScheduleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, before, limit); err != nil {
		return nil, fmt.Errorf("list unfetched splatfests: %w", err)
	}
	return mapSplatfestSchedules(rows), nil
}

func (r *SplatfestRepository) IngestRanking(ctx context.Context, entries []ranking.SplatfestEntry, names []playername.Record) error {
	if len(entries) == 0 && len(names) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx ingest splatfest ranking: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, entry := range entries {
		insertModel := splatfestRankingInsertModel{
			Region:      entry.Region,
			SplatfestID: entry.SplatfestID,
			Team:        entry.Team,
			PlayerID:    entry.PlayerID,
			WeaponID:    entry.WeaponID,
			Rank:        entry.Rank,
			Rating:      entry.Rating,
		}
		query, args, err := qb.InsertModel("splatfest_rankings", insertModel, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert splatfest ranking query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert splatfest ranking player_id=%s: %w", entry.PlayerID, err)
		}
	}

	if err := upsertKnownNamesTx(ctx, tx, names); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest splatfest ranking: %w", err)
	}
	return nil
}

func mapSplatfestSchedules(rows []splatfestScheduleTableModel) []ranking.SplatfestSchedule {
	out := make([]ranking.SplatfestSchedule, 0, len(rows))
	for _, row := range rows {
		out = append(out, ranking.SplatfestSchedule{
			Region:      row.Region,
			SplatfestID: row.SplatfestID,
			StartTime:   row.StartTime.UTC(),
			EndTime:     row.EndTime.UTC(),
			TeamAlpha:   row.TeamAlpha,
			TeamBravo:   row.TeamBravo,
		})
	}
	return out
}
