// Package pg provides a Postgres client using pgxpool with optional query tracing
package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32

	// SlowMs marks statements at or above it as slow in the tracer; negative never marks
	SlowMs int

	// AppName shows up as application_name in pg_stat_activity
	AppName string
}

// PG is a pool plus the tracer the store adapter reports statements to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Option adjusts Open
type Option func(*openOpts)

type openOpts struct {
	tracer QueryTracer
	tune   []func(*pgxpool.Config)
}

// WithTracer reports every statement to t; nil disables tracing
func WithTracer(t QueryTracer) Option { return func(o *openOpts) { o.tracer = t } }

// WithPoolConfig runs fn on the parsed pool config after Config has been applied
func WithPoolConfig(fn func(*pgxpool.Config)) Option {
	return func(o *openOpts) { o.tune = append(o.tune, fn) }
}

var newPool = pgxpool.NewWithConfig

// Open builds the pool without pinging; sessions run in UTC so timestamptz scans come back as UTC
func Open(ctx context.Context, cfg Config, opts ...Option) (*PG, error) {
	var o openOpts
	for _, opt := range opts {
		opt(&o)
	}

	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	rp := pcfg.ConnConfig.RuntimeParams
	rp["timezone"] = "UTC"
	if cfg.AppName != "" {
		rp["application_name"] = cfg.AppName
	}
	for _, fn := range o.tune {
		fn(pcfg)
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: pool: %w", err)
	}
	return &PG{Pool: pool, Tracer: o.tracer, SlowMs: cfg.SlowMs}, nil
}

// Close closes the pool; safe on nil
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
