package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/maurolguin1/ig-moderation/internal/platform/store/bus"
	chx "github.com/maurolguin1/ig-moderation/internal/platform/store/ch"
	"github.com/maurolguin1/ig-moderation/internal/platform/store/pg"
	"github.com/maurolguin1/ig-moderation/internal/platform/store/rds"
)

// client constructors, swapped in tests
var (
	dialCH   = chx.Open
	dialRDS  = rds.Open
	dialNATS = bus.Open
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  cfg.AppName,
	}, pg.WithTracer(tracer))
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	// ping the pool itself so boot retries never hit the sql tracer
	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	}
	if err := backoff.Retry(ping, connectBackoff(ctx, attempts)); err != nil {
		p.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
	}

	if cfg.PG.Migrate {
		if err := pg.Migrate(ctx, p.Pool); err != nil {
			p.Close()
			return nil, err
		}
	}
	a := newPGAdapter(p)
	s.PG = a
	return a, nil
}

// connectBackoff doubles from 150ms to 2s between boot pings
func connectBackoff(ctx context.Context, attempts int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 150 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := dialCH(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role, Tag: cfg.AppName})
	if err != nil {
		return nil, err
	}
	if cfg.CH.Migrate {
		if err := chx.Migrate(ctx, c); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return newCHAdapter(c), nil
}

func openRDS(ctx context.Context, cfg Config) (Cache, error) {
	c, err := dialRDS(ctx, rds.Config{
		Addr:     cfg.RDS.Addr,
		Password: cfg.RDS.Password,
		DB:       cfg.RDS.DB,
		Prefix:   cfg.RDS.Prefix,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func openNATS(ctx context.Context, cfg Config) (Bus, error) {
	c, err := dialNATS(ctx, bus.Config{URL: cfg.NATS.URL, Name: cfg.AppName, ConnectTimeout: cfg.NATS.ConnectTimeout})
	if err != nil {
		return nil, err
	}
	return c, nil
}
