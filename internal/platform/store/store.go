// Package store provides a unified interface to optional storage backends
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	"github.com/maurolguin1/ig-moderation/internal/platform/store/bus"
	"github.com/maurolguin1/ig-moderation/internal/platform/store/rds"
)

// Store holds the opened backends; a disabled backend stays nil.
type Store struct {
	// Log is handed to subclients such as the pg tracer
	Log logger.Logger

	PG    TxRunner
	CH    Clickhouse
	Cache Cache // redis
	Bus   Bus   // nats
}

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger handed to subclients such as the pg tracer
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// ErrCacheMiss is returned by Cache.Get for absent keys
var ErrCacheMiss = rds.ErrMiss

// Cache is a byte cache with prefix invalidation
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// BusHandler receives raw payloads published on a subject
type BusHandler = bus.Handler

// Bus is a fire and forget JSON message bus
type Bus interface {
	PublishJSON(ctx context.Context, subject string, v any) error
	Subscribe(subject string, fn BusHandler) (unsubscribe func() error, err error)
	Close() error
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is a tiny seam for columnar writes and queries
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open dials every backend enabled in cfg, in the order pg, ch, redis, nats.
// The first failure closes whatever was already opened.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	steps := []struct {
		on   bool
		open func() error
	}{
		{cfg.PG.Enabled, func() (err error) { s.PG, err = openPG(ctx, cfg, s); return err }},
		{cfg.CH.Enabled, func() (err error) { s.CH, err = openCH(ctx, cfg, s); return err }},
		{cfg.RDS.Enabled, func() (err error) { s.Cache, err = openRDS(ctx, cfg); return err }},
		{cfg.NATS.Enabled, func() (err error) { s.Bus, err = openNATS(ctx, cfg); return err }},
	}
	for _, st := range steps {
		if !st.on {
			continue
		}
		if err := st.open(); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
	}
	return s, nil
}

type backend struct {
	name string
	v    any
}

// backends lists the opened seams in open order
func (s *Store) backends() []backend {
	all := []backend{{"pg", s.PG}, {"ch", s.CH}, {"redis", s.Cache}, {"nats", s.Bus}}
	out := all[:0]
	for _, b := range all {
		if b.v != nil {
			out = append(out, b)
		}
	}
	return out
}

// Guard pings every opened backend that can report readiness and joins the failures.
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, b := range s.backends() {
		if p, ok := b.v.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes opened backends in reverse open order.
func (s *Store) Close(_ context.Context) error {
	var errs []error
	for _, b := range slices.Backward(s.backends()) {
		if c, ok := b.v.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			}
		}
	}
	return errors.Join(errs...)
}
