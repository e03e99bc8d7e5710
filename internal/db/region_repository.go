package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/regionspawn/internal/model"
)

// RegionRepository stores region configuration in PostgreSQL.
type RegionRepository struct {
	pool *pgxpool.Pool
}

// NewRegionRepository creates a new region repository
func NewRegionRepository(pool *pgxpool.Pool) *RegionRepository {
	return &RegionRepository{pool: pool}
}

// LoadAll loads all regions. The candidates column is decoded by pgx's
// JSON codec straight into the region.
func (r *RegionRepository) LoadAll(ctx context.Context) ([]model.Region, error) {
	query := `
		SELECT x, y, z, name, dimension, timer_ticks, capacity, batch_size,
		       radius_width, radius_height, visible, show_particles, candidates
		FROM regions
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all regions: %w", err)
	}
	defer rows.Close()

	regions := make([]model.Region, 0, 16)

	for rows.Next() {
		var reg model.Region
		if err := rows.Scan(
			&reg.Key.X, &reg.Key.Y, &reg.Key.Z,
			&reg.Name, &reg.Dimension, &reg.TimerTicks, &reg.Capacity, &reg.BatchSize,
			&reg.Radius.Width, &reg.Radius.Height, &reg.Visible, &reg.ShowParticles,
			&reg.Candidates,
		); err != nil {
			return nil, fmt.Errorf("scanning region row: %w", err)
		}
		if reg.Candidates == nil {
			reg.Candidates = []model.CandidateSpec{}
		}
		regions = append(regions, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating region rows: %w", err)
	}

	return regions, nil
}

// SaveAll replaces the stored regions with regions in a single transaction.
func (r *RegionRepository) SaveAll(ctx context.Context, regions []model.Region) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	xs := make([]int32, 0, len(regions))
	ys := make([]int32, 0, len(regions))
	zs := make([]int32, 0, len(regions))
	for _, reg := range regions {
		xs = append(xs, reg.Key.X)
		ys = append(ys, reg.Key.Y)
		zs = append(zs, reg.Key.Z)
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM regions
		 WHERE (x, y, z) NOT IN (
		   SELECT * FROM unnest($1::int[], $2::int[], $3::int[])
		 )`,
		xs, ys, zs,
	)
	if err != nil {
		return fmt.Errorf("deleting removed regions: %w", err)
	}

	if len(regions) > 0 {
		batch := &pgx.Batch{}
		for _, reg := range regions {
			candidates := reg.Candidates
			if candidates == nil {
				candidates = []model.CandidateSpec{}
			}
			batch.Queue(
				`INSERT INTO regions
				 (x, y, z, name, dimension, timer_ticks, capacity, batch_size,
				  radius_width, radius_height, visible, show_particles, candidates, updated_at)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now())
				 ON CONFLICT (x, y, z) DO UPDATE SET
				  name=$4, dimension=$5, timer_ticks=$6, capacity=$7, batch_size=$8,
				  radius_width=$9, radius_height=$10, visible=$11, show_particles=$12,
				  candidates=$13, updated_at=now()`,
				reg.Key.X, reg.Key.Y, reg.Key.Z,
				reg.Name, reg.Dimension, reg.TimerTicks, reg.Capacity, reg.BatchSize,
				reg.Radius.Width, reg.Radius.Height, reg.Visible, reg.ShowParticles,
				candidates,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range regions {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				return fmt.Errorf("save region batch: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close region batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit regions: %w", err)
	}

	slog.Debug("regions saved", "count", len(regions), "deleted", tag.RowsAffected())
	return nil
}
