package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	qb "github.com/yukinkling/splatoon-stats/internal/platform/querybuilder"
)

type WeaponRepository struct {
	db *sqlx.DB
}

func NewWeaponRepository(db *sqlx.DB) *WeaponRepository {
	return &WeaponRepository{db: db}
}

type weaponAliasRow struct {
	WeaponID int           `db:"weapon_id"`
	ReskinOf sql.NullInt64 `db:"reskin_of"`
}

// ListAliases returns the reskin-to-canonical weapon id map from the weapon
// catalog. Weapons without a reskin root are omitted.
func (r *WeaponRepository) ListAliases(ctx context.Context) (map[int]int, error) {
	query, _, err := qb.Select("weapon_id", "reskin_of").
		From("weapons").
		Where(qb.IsNotNull("reskin_of")).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weapon aliases query: %w", err)
	}

	var rows []weaponAliasRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list weapon aliases: %w", err)
	}

	out := make(map[int]int, len(rows))
	for _, row := range rows {
		if !row.ReskinOf.Valid {
			continue
		}
		out[row.WeaponID] = int(row.ReskinOf.Int64)
	}
	return out, nil
}
