package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahimasingh04/OpenEvent/migrations"
)

const testDBLockID int64 = 42017002

// NewTestPool connects to TEST_DATABASE_URL, applies migrations and empties every table.
// The test is skipped when the variable is unset or the database is unreachable.
func NewTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return NewTestPoolWithMaxConns(t, 8)
}

// NewTestPoolWithMaxConns is NewTestPool with a bounded pool. One connection
// stays checked out for the test database lock.
func NewTestPoolWithMaxConns(t *testing.T, maxConns int32) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping PostgreSQL test: %v", err)
	}
	t.Cleanup(pool.Close)

	lockTestDB(t, pool)

	if err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `
TRUNCATE checkins, insurance_policies, promotions, waitlist_entries, resale_listings,
         holdings, ticket_tiers, events, ledger_entries, ledger_accounts RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("failed to truncate: %v", err)
	}
	return pool
}

// lockTestDB keeps packages that share the database from running concurrently
func lockTestDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("failed to acquire lock connection: %v", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, testDBLockID); err != nil {
		conn.Release()
		t.Fatalf("failed to acquire test lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, testDBLockID)
		conn.Release()
	})
}
