package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/regionspawn/internal/db/migrations"
)

// Migrate applies the embedded goose migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrate(ctx, d.pool)
}

// SchemaVersion returns the latest applied migration version.
func (d *DB) SchemaVersion(ctx context.Context) (int64, error) {
	var version int64
	err := withSQLDB(d.pool, func(sqlDB *sql.DB) error {
		var err error
		version, err = goose.GetDBVersionContext(ctx, sqlDB)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return withSQLDB(pool, func(sqlDB *sql.DB) error {
		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("setting goose dialect: %w", err)
		}
		if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		return nil
	})
}

// withSQLDB opens a database/sql handle over the pool's connection config,
// which goose requires.
func withSQLDB(pool *pgxpool.Pool, fn func(*sql.DB) error) error {
	connStr := stdlib.RegisterConnConfig(pool.Config().ConnConfig)
	defer stdlib.UnregisterConnConfig(connStr)

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql connection: %w", err)
	}
	defer sqlDB.Close()

	return fn(sqlDB)
}
