package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maurolguin1/ig-moderation/internal/platform/store/pg"
)

// jobRows serves (id, filename) pairs; unused pgx.Rows methods panic through the nil embed
type jobRows struct {
	pgx.Rows
	data   [][2]string
	i      int
	closed bool
}

func (r *jobRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *jobRows) Scan(dest ...any) error {
	if len(dest) != 2 {
		return errors.New("want 2 dest")
	}
	*dest[0].(*string), *dest[1].(*string) = r.data[r.i-1][0], r.data[r.i-1][1]
	return nil
}
func (r *jobRows) Err() error { return nil }
func (r *jobRows) Close()     { r.closed = true }
func (r *jobRows) FieldDescriptions() []pgconn.FieldDescription {
	return []pgconn.FieldDescription{{Name: "id"}, {Name: "filename"}}
}

type intRow struct {
	v   int
	err error
}

func (r intRow) Scan(dest ...any) error {
	if r.err == nil {
		*dest[0].(*int) = r.v
	}
	return r.err
}

// fakeTx stands in for both the pool and a transaction
type fakeTx struct {
	pgx.Tx
	execErr    error
	rows       *jobRows
	row        intRow
	sql        []string
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	return pgconn.NewCommandTag("UPDATE 1"), f.execErr
}

func (f *fakeTx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sql = append(f.sql, sql)
	return f.rows, nil
}

func (f *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sql = append(f.sql, sql)
	return f.row
}

func (f *fakeTx) Commit(context.Context) error   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error { f.rolledBack = true; return nil }

type recTracer struct{ events []pg.QueryEvent }

func (r *recTracer) OnQuery(_ context.Context, ev pg.QueryEvent) { r.events = append(r.events, ev) }

func TestTraced_ReportsEveryStatement(t *testing.T) {
	t.Parallel()

	tr := &recTracer{}
	ft := &fakeTx{
		rows: &jobRows{data: [][2]string{{"j1", "comments.xlsx"}}},
		row:  intRow{err: errors.New("no rows")},
	}
	q := traced{q: ft, tracer: tr, slow: time.Hour}
	ctx := context.Background()

	ct, err := q.Exec(ctx, "UPDATE import_jobs SET rows_error = $2 WHERE id = $1", "j1", 3)
	if err != nil || ct.RowsAffected() != 1 || ct.String() != "UPDATE 1" {
		t.Fatalf("Exec = %v, %v", ct, err)
	}

	rs, err := q.Query(ctx, "SELECT id, filename FROM import_jobs")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if cols := rs.Columns(); len(cols) != 2 || cols[1] != "filename" {
		t.Fatalf("columns = %v", cols)
	}
	var id, name string
	if !rs.Next() || rs.Scan(&id, &name) != nil || name != "comments.xlsx" {
		t.Fatalf("row = %q %q", id, name)
	}
	rs.Close()
	if !ft.rows.closed {
		t.Fatalf("rows not closed")
	}

	var n int
	if err := q.QueryRow(ctx, "SELECT count(*) FROM comments").Scan(&n); err == nil {
		t.Fatalf("expected scan error")
	}

	if len(tr.events) != 3 {
		t.Fatalf("events = %d", len(tr.events))
	}
	if tr.events[0].Slow || len(tr.events[0].Args) != 2 {
		t.Fatalf("exec event = %+v", tr.events[0])
	}
	if tr.events[2].Err == nil {
		t.Fatalf("QueryRow event should carry the scan error")
	}
}

func TestTraced_SlowThreshold(t *testing.T) {
	t.Parallel()

	tr := &recTracer{}
	ft := &fakeTx{}
	_, _ = traced{q: ft, tracer: tr, slow: 0}.Exec(context.Background(), "SELECT 1")
	_, _ = traced{q: ft, tracer: tr, slow: -1}.Exec(context.Background(), "SELECT 1")

	if !tr.events[0].Slow || tr.events[1].Slow {
		t.Fatalf("slow flags = %v %v", tr.events[0].Slow, tr.events[1].Slow)
	}
}

func TestTraced_NoTracerIsQuiet(t *testing.T) {
	t.Parallel()

	if _, err := (traced{q: &fakeTx{}}).Exec(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
}

func TestPGAdapter_Tx(t *testing.T) {
	t.Parallel()

	tr := &recTracer{}
	ok := &fakeTx{}
	a := &pgAdapter{traced: traced{tracer: tr}, begin: func(context.Context) (pgx.Tx, error) { return ok, nil }}

	err := a.Tx(context.Background(), func(q RowQuerier) error {
		_, err := q.Exec(context.Background(), "INSERT INTO import_logs (job_id) VALUES ($1)", "j1")
		return err
	})
	if err != nil || !ok.committed || ok.rolledBack {
		t.Fatalf("commit path: err=%v tx=%+v", err, ok)
	}
	if len(tr.events) != 1 {
		t.Fatalf("statements inside tx were not traced")
	}

	bad := &fakeTx{execErr: errors.New("fk violation")}
	a.begin = func(context.Context) (pgx.Tx, error) { return bad, nil }
	err = a.Tx(context.Background(), func(q RowQuerier) error {
		_, err := q.Exec(context.Background(), "INSERT INTO import_logs (job_id) VALUES ($1)", "nope")
		return err
	})
	if err == nil || bad.committed || !bad.rolledBack {
		t.Fatalf("rollback path: err=%v tx=%+v", err, bad)
	}

	a.begin = func(context.Context) (pgx.Tx, error) { return nil, errors.New("pool closed") }
	if err := a.Tx(context.Background(), func(RowQuerier) error { return nil }); err == nil {
		t.Fatalf("expected begin error")
	}
}

func TestPGAdapter_PingAndClose(t *testing.T) {
	t.Parallel()

	var nilAdapter *pgAdapter
	if err := nilAdapter.Ping(context.Background()); err == nil {
		t.Fatalf("expected error on nil adapter")
	}
	if err := nilAdapter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	closed := false
	a := &pgAdapter{traced: traced{q: &fakeTx{row: intRow{v: 1}}}, close: func() { closed = true }}
	if err := a.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	_ = a.Close()
	if !closed {
		t.Fatalf("Close did not reach the pool")
	}
}
