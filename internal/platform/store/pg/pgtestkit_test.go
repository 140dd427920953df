package pg

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTestDB opens a migrated client tagged igmod-test and closes it on cleanup
func WithTestDB(t *testing.T, dsn string, poolMut func(*pgxpool.Config), fn func(p *PG)) {
	t.Helper()

	ctx := context.Background()
	opts := []Option{}
	if poolMut != nil {
		opts = append(opts, WithPoolConfig(poolMut))
	}
	client, err := Open(ctx, Config{URL: dsn, AppName: "igmod-test"}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)
	if err := Migrate(ctx, client.Pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	fn(client)
}

// AcquireConn pins one session for the test, e.g. for temp tables
func AcquireConn(t *testing.T, p *PG, ctx context.Context) *pgxpool.Conn {
	t.Helper()

	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	t.Cleanup(conn.Release)
	return conn
}
