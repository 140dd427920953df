package pg

import (
	"context"
	"strings"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives every statement that goes through the store adapter
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements under the pg component regardless of the root level
// request_id and job_id from ctx are attached so an import's writes can be followed
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	l := logger.From(z.log, ctx)
	evt := l.Debug()
	switch {
	case ev.Err != nil:
		evt = l.Error().Err(ev.Err)
	case ev.Slow:
		evt = l.Warn()
	}
	evt.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Int("args", len(ev.Args)).
		Msg("pg query")
}

// compact folds runs of whitespace so multi-line statements log on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
