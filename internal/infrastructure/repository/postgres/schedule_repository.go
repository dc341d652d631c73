package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/yukinkling/splatoon-stats/internal/domain/ranking"
	qb "github.com/yukinkling/splatoon-stats/internal/platform/querybuilder"
)

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) CountUpcoming(ctx context.Context, after time.Time) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From("league_schedules").
		Where(qb.Gte("start_time", after)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count upcoming schedules query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count upcoming schedules: %w", err)
	}
	return count, nil
}

// InsertSchedules stores rotation rows, keeping whatever was recorded first
// for a window. The mirror occasionally rewrites history; first write wins.
func (r *ScheduleRepository) InsertSchedules(ctx context.Context, schedules []ranking.LeagueSchedule) error {
	for _, schedule := range schedules {
		stageIDs := make(pq.Int64Array, 0, len(schedule.StageIDs))
		for _, id := range schedule.StageIDs {
			stageIDs = append(stageIDs, int64(id))
		}

		query, args, err := qb.InsertInto("league_schedules").
			Columns("start_time", "rule_id", "stage_ids").
			Values(schedule.StartTime, schedule.RuleID, stageIDs).
			Suffix("ON CONFLICT (start_time) DO NOTHING").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert league schedule query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert league schedule start_time=%s: %w", schedule.StartTime.Format(time.RFC3339), err)
		}
	}
	return nil
}
