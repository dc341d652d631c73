package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yukinkling/splatoon-stats/internal/domain/playername"
	qb "github.com/yukinkling/splatoon-stats/internal/platform/querybuilder"
)

type PlayerNameRepository struct {
	db *sqlx.DB
}

func NewPlayerNameRepository(db *sqlx.DB) *PlayerNameRepository {
	return &PlayerNameRepository{db: db}
}

// CurrentName reads the materialized latest-name view. A player ingested
// since the last refresh has no view row yet; those are resolved from the
// raw ledger rows with the same ordering the view applies.
func (r *PlayerNameRepository) CurrentName(ctx context.Context, playerID string) (string, bool, error) {
	query, args, err := qb.Select("player_name").
		From("latest_player_names_mv").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build current name query: %w", err)
	}

	var name string
	err = r.db.GetContext(ctx, &name, query, args...)
	if err == nil {
		return name, true, nil
	}
	if !isNotFound(err) {
		return "", false, fmt.Errorf("get current name: %w", err)
	}
	return r.currentNameFromLedger(ctx, playerID)
}

func (r *PlayerNameRepository) currentNameFromLedger(ctx context.Context, playerID string) (string, bool, error) {
	query, args, err := qb.Select("player_id", "player_name", "last_used").
		From("player_known_names").
		Where(qb.Eq("player_id", playerID)).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build known names query: %w", err)
	}

	var rows []knownNameModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return "", false, fmt.Errorf("list known names: %w", err)
	}

	records := make([]playername.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, playername.Record(row))
	}
	latest, ok := playername.Latest(records)
	if !ok {
		return "", false, nil
	}
	return latest.PlayerName, true, nil
}

func (r *PlayerNameRepository) RefreshLatestNames(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "REFRESH MATERIALIZED VIEW CONCURRENTLY latest_player_names_mv"); err != nil {
		return fmt.Errorf("refresh latest player names: %w", err)
	}
	return nil
}

// buildKnownNameUpsert builds the forward-only ledger merge: an existing
// (player, name) row only moves when the incoming sighting is strictly
// newer, so replaying an old window never clobbers a newer one.
func buildKnownNameUpsert(record playername.Record) (string, []any, error) {
	return qb.InsertModel("player_known_names", knownNameModel(record), `ON CONFLICT (player_id, player_name)
DO UPDATE SET last_used = EXCLUDED.last_used
WHERE player_known_names.last_used < EXCLUDED.last_used`)
}

// upsertKnownNamesTx merges name sightings into the ledger inside an ongoing
// ranking transaction.
func upsertKnownNamesTx(ctx context.Context, tx *sqlx.Tx, names []playername.Record) error {
	for _, record := range names {
		if record.PlayerID == "" || record.PlayerName == "" {
			continue
		}
		query, args, err := buildKnownNameUpsert(record)
		if err != nil {
			return fmt.Errorf("build upsert known name query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert known name player_id=%s: %w", record.PlayerID, err)
		}
	}
	return nil
}
