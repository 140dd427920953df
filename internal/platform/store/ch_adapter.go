package store

import (
	"context"
	"errors"

	"github.com/maurolguin1/ig-moderation/internal/platform/store/ch"
)

// chSeam narrows *ch.CH to Clickhouse; Insert and Close come from the embedded client
type chSeam struct{ *ch.CH }

var _ Clickhouse = chSeam{}

func newCHAdapter(c *ch.CH) Clickhouse { return chSeam{c} }

func (s chSeam) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := s.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

func (s chSeam) Ping(ctx context.Context) error {
	if s.CH == nil {
		return errors.New("store: clickhouse not opened")
	}
	return s.CH.Ping(ctx)
}

// chRows drops the driver's Close error and exposes the rest unchanged
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
