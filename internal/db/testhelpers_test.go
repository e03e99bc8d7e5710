package db

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/regionspawn/internal/testutil"
)

// testPool is shared by every test in package db; nil under -short.
var testPool *pgxpool.Pool

// TestMain starts a PostgreSQL container and applies migrations.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	pg, err := testutil.StartPostgres(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}

	database, err := New(ctx, pg.DSN)
	if err != nil {
		_ = pg.Terminate()
		log.Fatalf("connecting to test db: %v", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		_ = pg.Terminate()
		log.Fatalf("running migrations: %v", err)
	}
	testPool = database.Pool()

	code := m.Run()

	database.Close()
	if err := pg.Terminate(); err != nil {
		log.Printf("%v", err)
	}
	os.Exit(code)
}

// setupTestDB returns the shared pool with region tables truncated.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()
	if testPool == nil {
		tb.Skip("postgres tests are skipped in -short mode")
	}

	ctx := context.Background()
	for _, query := range []string{
		"TRUNCATE regions",
		"TRUNCATE region_spawn_state",
	} {
		if _, err := testPool.Exec(ctx, query); err != nil {
			tb.Fatalf("cleanup %q: %v", query, err)
		}
	}
	return testPool
}
