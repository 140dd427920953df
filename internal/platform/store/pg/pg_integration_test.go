//go:build integration_pg

package pg

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// postgresDSN starts a throwaway postgres 16 and returns its DSN; the container dies with t
func postgresDSN(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env:          map[string]string{"POSTGRES_PASSWORD": "igmod", "POSTGRES_DB": "igmod"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return fmt.Sprintf("postgres://postgres:igmod@%s:%s/igmod?sslmode=disable", host, port.Port())
}

func TestSchema_Integration(t *testing.T) {
	dsn := postgresDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	const app = "igmod-pg-integration"
	WithTestDB(t, dsn, func(pc *pgxpool.Config) {
		pc.ConnConfig.RuntimeParams["application_name"] = app
	}, func(p *PG) {
		// WithTestDB already migrated once; boot runs it every start
		if err := Migrate(ctx, p.Pool); err != nil {
			t.Fatalf("second migrate: %v", err)
		}
		conn := AcquireConn(t, p, ctx)

		t.Run("application name", func(t *testing.T) {
			var got string
			if err := conn.QueryRow(ctx, `SELECT current_setting('application_name')`).Scan(&got); err != nil {
				t.Fatal(err)
			}
			if got != app {
				t.Fatalf("application_name = %q", got)
			}
		})

		t.Run("prefix search on generated tsv", func(t *testing.T) {
			b := &pgx.Batch{}
			b.Queue(`INSERT INTO comments (external_id, username, comment_text, aggression_level, is_attack)
				VALUES ($1, $2, $3, $4, $5)`, "c1", "ana", "hola mundo cruel", 3, true)
			b.Queue(`INSERT INTO comments (external_id, username, comment_text) VALUES ($1, $2, $3)`,
				"c2", "bob", "nada que ver")
			if err := conn.SendBatch(ctx, b).Close(); err != nil {
				t.Fatalf("insert: %v", err)
			}

			rows, err := conn.Query(ctx, `SELECT external_id FROM comments
				WHERE tsv @@ to_tsquery('simple', 'mun:*') ORDER BY id`)
			if err != nil {
				t.Fatal(err)
			}
			ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
			if err != nil {
				t.Fatal(err)
			}
			if len(ids) != 1 || ids[0] != "c1" {
				t.Fatalf("matches = %v", ids)
			}
		})

		t.Run("job log cascades with its job", func(t *testing.T) {
			job := uuid.New()
			if _, err := conn.Exec(ctx, `INSERT INTO import_jobs (id, filename) VALUES ($1, 'batch.xlsx')`, job); err != nil {
				t.Fatal(err)
			}
			if _, err := conn.Exec(ctx, `INSERT INTO import_logs (job_id, line_no, reason) VALUES ($1, 2, 'invalid_date')`, job); err != nil {
				t.Fatal(err)
			}
			if _, err := conn.Exec(ctx, `DELETE FROM import_jobs WHERE id = $1`, job); err != nil {
				t.Fatal(err)
			}
			var n int
			if err := conn.QueryRow(ctx, `SELECT count(*) FROM import_logs WHERE job_id = $1`, job).Scan(&n); err != nil {
				t.Fatal(err)
			}
			if n != 0 {
				t.Fatalf("orphan log rows = %d", n)
			}
		})
	})
}
