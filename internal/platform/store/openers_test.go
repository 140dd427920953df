package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/store/bus"
	chx "github.com/maurolguin1/ig-moderation/internal/platform/store/ch"
	"github.com/maurolguin1/ig-moderation/internal/platform/store/rds"
	"github.com/maurolguin1/ig-moderation/internal/platform/testkit"
)

// fakeCache and fakeBus also report readiness so Guard can see them
type fakeCache struct {
	pingErr error
	closed  bool
}

func (f *fakeCache) Get(context.Context, string) ([]byte, error)              { return nil, ErrCacheMiss }
func (f *fakeCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (f *fakeCache) DeleteByPrefix(context.Context, string) error             { return nil }
func (f *fakeCache) Close() error                                             { f.closed = true; return nil }
func (f *fakeCache) Ping(context.Context) error                               { return f.pingErr }

// fakeTxWithPing is a TxRunner that also reports readiness
type fakeTxWithPing struct {
	TxRunner
	err error
}

func (f *fakeTxWithPing) Ping(context.Context) error { return f.err }

type fakeBus struct{ closed bool }

func (f *fakeBus) PublishJSON(context.Context, string, any) error { return nil }
func (f *fakeBus) Subscribe(string, BusHandler) (func() error, error) {
	return func() error { return nil }, nil
}
func (f *fakeBus) Close() error { f.closed = true; return nil }

func TestOpenCH_PassesRoleAndTag(t *testing.T) {
	testkit.Serial(t)

	var got chx.Config
	testkit.Swap(t, &dialCH, func(_ context.Context, c chx.Config) (*chx.CH, error) {
		got = c
		return &chx.CH{}, nil
	})

	cfg := Config{AppName: "igmod-api", CH: CHConfig{Enabled: true, URL: "clickhouse://x", Role: "api"}}
	if _, err := openCH(context.Background(), cfg, &Store{}); err != nil {
		t.Fatalf("openCH: %v", err)
	}
	if got.URL != "clickhouse://x" || got.Role != "api" || got.Tag != "igmod-api" {
		t.Fatalf("config = %+v", got)
	}
}

func TestOpen_RedisError_ClosesEarlierSeams(t *testing.T) {
	testkit.Serial(t)

	testkit.Swap(t, &dialCH, func(context.Context, chx.Config) (*chx.CH, error) { return &chx.CH{}, nil })
	testkit.Swap(t, &dialRDS, func(context.Context, rds.Config) (*rds.Client, error) {
		return nil, errors.New("redis down")
	})

	s, err := Open(context.Background(), Config{
		CH:  CHConfig{Enabled: true, URL: "clickhouse://x"},
		RDS: RedisConfig{Enabled: true, Addr: "127.0.0.1:6379"},
	})
	if err == nil || !strings.Contains(err.Error(), "redis down") {
		t.Fatalf("err = %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil store")
	}
}

func TestOpenNATS_UsesAppNameAsClientName(t *testing.T) {
	testkit.Serial(t)

	var got bus.Config
	testkit.Swap(t, &dialNATS, func(_ context.Context, c bus.Config) (*bus.Conn, error) {
		got = c
		return nil, errors.New("stop")
	})

	cfg := Config{AppName: "igmod-import", NATS: NATSConfig{Enabled: true, URL: "nats://x:4222"}}
	if _, err := openNATS(context.Background(), cfg); err == nil {
		t.Fatalf("expected dial error")
	}
	if got.Name != "igmod-import" || got.URL != "nats://x:4222" {
		t.Fatalf("config = %+v", got)
	}
}

func TestGuard_ReportsEverySeam(t *testing.T) {
	t.Parallel()

	s := &Store{
		PG:    &fakeTxWithPing{err: errors.New("pg down")},
		Cache: &fakeCache{pingErr: errors.New("redis down")},
		Bus:   &fakeBus{},
	}
	err := s.Guard(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"pg: pg down", "redis: redis down"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q lacks %q", err, want)
		}
	}
}

func TestGuard_NilAndEmpty(t *testing.T) {
	t.Parallel()

	var s *Store
	if err := s.Guard(context.Background()); err == nil {
		t.Fatalf("nil store should fail")
	}
	if err := (&Store{PG: &fakeTxWithPing{}}).Guard(context.Background()); err != nil {
		t.Fatalf("healthy pg: %v", err)
	}
}

func TestClose_ClosesCacheAndBus(t *testing.T) {
	t.Parallel()

	c, b := &fakeCache{}, &fakeBus{}
	s := &Store{Cache: c, Bus: b}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed || !b.closed {
		t.Fatalf("closed cache=%v bus=%v", c.closed, b.closed)
	}
}

// orderedCloser records its name into a shared log on Close
type orderedCloser struct {
	TxRunner
	name string
	log  *[]string
}

func (o *orderedCloser) Close() error { *o.log = append(*o.log, o.name); return nil }

func TestClose_ReverseOpenOrderAndNamedErrors(t *testing.T) {
	t.Parallel()

	var log []string
	pg := &orderedCloser{name: "pg", log: &log}
	bus := &fakeBus{}
	s := &Store{PG: pg, Bus: bus}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(log) != 1 || !bus.closed {
		t.Fatalf("log=%v bus closed=%v", log, bus.closed)
	}

	failing := &Store{Cache: &fakeCache{}, PG: &failingCloser{}}
	err := failing.Close(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "pg: ") {
		t.Fatalf("err = %v", err)
	}
}

type failingCloser struct{ TxRunner }

func (failingCloser) Close() error { return errors.New("pool busy") }
