package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Postgres is a throwaway PostgreSQL 16 container.
type Postgres struct {
	container *postgres.PostgresContainer
	DSN       string
}

// StartPostgres starts a container and waits until it accepts connections.
// Callers own the container and must call Terminate.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("regionspawn_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("getting connection string: %w", err)
	}

	return &Postgres{container: container, DSN: dsn}, nil
}

// Terminate stops and removes the container.
func (p *Postgres) Terminate() error {
	if err := testcontainers.TerminateContainer(p.container); err != nil {
		return fmt.Errorf("terminating postgres container: %w", err)
	}
	return nil
}
