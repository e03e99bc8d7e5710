package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/regionspawn/internal/model"
)

// SpawnStateRepository stores per-region spawn timer offsets.
type SpawnStateRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnStateRepository creates a new spawn state repository
func NewSpawnStateRepository(pool *pgxpool.Pool) *SpawnStateRepository {
	return &SpawnStateRepository{pool: pool}
}

// LoadSpawnTicks returns the stored offset of every region.
func (r *SpawnStateRepository) LoadSpawnTicks(ctx context.Context) (map[model.Coord]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT x, y, z, offset_ticks FROM region_spawn_state`)
	if err != nil {
		return nil, fmt.Errorf("loading spawn state: %w", err)
	}
	defer rows.Close()

	ticks := make(map[model.Coord]int64)
	for rows.Next() {
		var (
			key    model.Coord
			offset int64
		)
		if err := rows.Scan(&key.X, &key.Y, &key.Z, &offset); err != nil {
			return nil, fmt.Errorf("scanning spawn state row: %w", err)
		}
		ticks[key] = offset
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn state rows: %w", err)
	}
	return ticks, nil
}

// SaveSpawnTicks replaces the stored offsets (full replace).
func (r *SpawnStateRepository) SaveSpawnTicks(ctx context.Context, ticks map[model.Coord]int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM region_spawn_state`); err != nil {
		return fmt.Errorf("deleting old spawn state: %w", err)
	}

	if len(ticks) > 0 {
		rows := make([][]any, 0, len(ticks))
		for key, offset := range ticks {
			rows = append(rows, []any{key.X, key.Y, key.Z, offset})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"region_spawn_state"},
			[]string{"x", "y", "z", "offset_ticks"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("inserting spawn state: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit spawn state: %w", err)
	}

	slog.Debug("saved spawn state", "count", len(ticks))
	return nil
}
