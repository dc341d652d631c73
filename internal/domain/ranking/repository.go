package ranking

import (
	"context"
	"time"

	"github.com/yukinkling/splatoon-stats/internal/domain/playername"
)

// LeagueRepository persists the league ranking timeline. IngestWindow writes
// one window's rows and name-ledger entries in a single transaction and is a
// no-op for rows that already exist.
type LeagueRepository interface {
	IngestWindow(ctx context.Context, entries []LeagueEntry, names []playername.Record) error
	ListStartTimes(ctx context.Context) ([]time.Time, error)
	ListMissingStartTimes(ctx context.Context) ([]time.Time, error)
	MarkMissing(ctx context.Context, startTime time.Time) error
}

// XRepository persists the monthly X ranking timeline.
type XRepository interface {
	IngestWindow(ctx context.Context, entries []XEntry, names []playername.Record) error
	ListStartTimes(ctx context.Context) ([]time.Time, error)
	ListMissingStartTimes(ctx context.Context) ([]time.Time, error)
	MarkMissing(ctx context.Context, startTime time.Time) error
}

// SplatfestRepository persists event schedules and their leaderboards.
type SplatfestRepository interface {
	UpsertSchedules(ctx context.Context, schedules []SplatfestSchedule) error
	ListSchedules(ctx context.Context) ([]SplatfestSchedule, error)
	// ListUnfetched returns past schedules with no ranking rows yet, oldest
	// first, capped at limit.
	ListUnfetched(ctx context.Context, before time.Time, limit int) ([]SplatfestSchedule, error)
	IngestRanking(ctx context.Context, entries []SplatfestEntry, names []playername.Record) error
}

// ScheduleRepository persists league stage rotations.
type ScheduleRepository interface {
	CountUpcoming(ctx context.Context, after time.Time) (int, error)
	InsertSchedules(ctx context.Context, schedules []LeagueSchedule) error
}
