// Package testutil provides shared testing utilities for the canvas project.
//
// This package contains reusable test infrastructure that can be used across
// multiple packages, following the pattern of Go standard library packages
// like net/http/httptest and testing/iotest.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/koopa0/canvas/db"
	"github.com/koopa0/canvas/internal/sqlc"
)

// TestDB wraps a PostgreSQL test container with a ready connection pool
// and sqlc queries. The schema is migrated before it is returned.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Queries   *sqlc.Queries
	ConnStr   string
}

// SetupTestDB creates an isolated PostgreSQL container, runs the embedded
// migrations against it, and registers cleanup via t.Cleanup.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    tdb := testutil.SetupTestDB(t)
//	    store := artifact.NewStore(tdb.Queries, tdb.Pool, log.NewNop())
//	    // ...
//	}
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("canvas_test"),
		postgres.WithUsername("canvas_test"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		_ = pgContainer.Terminate(context.Background())
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := db.Migrate(connStr); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	return &TestDB{
		Container: pgContainer,
		Pool:      pool,
		Queries:   sqlc.New(pool),
		ConnStr:   connStr,
	}
}
