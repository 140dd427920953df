package store

import (
	"context"
	"errors"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
)

// ErrTooManyRows is returned by One when the query yields more than a single row
var ErrTooManyRows = errors.New("store: expected one row, got more")

// Scalar reads the first column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// One maps exactly one row with scan; no rows is perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	item, err := scan(cursor{rows})
	if err != nil {
		return zero, err
	}
	if rows.Next() {
		return zero, ErrTooManyRows
	}
	return item, rows.Err()
}

// Many maps every row with scan; an empty result is a nil slice
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	var out []T
	err := Each(ctx, q, func(r Row) error {
		item, err := scan(r)
		if err != nil {
			return err
		}
		out = append(out, item)
		return nil
	}, sql, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Each streams rows into fn without buffering; fn errors stop iteration
func Each(ctx context.Context, q RowQuerier, fn func(Row) error, sql string, args ...any) error {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(cursor{rows}); err != nil {
			return err
		}
	}
	return rows.Err()
}

// cursor scans the current position of Rows
type cursor struct{ rows Rows }

func (c cursor) Scan(dest ...any) error { return c.rows.Scan(dest...) }
