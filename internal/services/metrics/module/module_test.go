package module

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/platform/testkit"
	"github.com/maurolguin1/ig-moderation/internal/services/importer/events"
)

// emptyPG answers every aggregate with zeros
type emptyPG struct{}

type zeroRow struct{}

func (zeroRow) Scan(...any) error { return nil }

type noRows struct{}

func (noRows) Next() bool        { return false }
func (noRows) Scan(...any) error { return nil }
func (noRows) Err() error        { return nil }
func (noRows) Close()            {}
func (noRows) Columns() []string { return nil }

func (emptyPG) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (emptyPG) Query(context.Context, string, ...any) (store.Rows, error)      { return noRows{}, nil }
func (emptyPG) QueryRow(context.Context, string, ...any) store.Row             { return zeroRow{} }
func (emptyPG) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	return fn(emptyPG{})
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, error)              { return nil, store.ErrCacheMiss }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nopCache) DeleteByPrefix(context.Context, string) error             { return nil }
func (nopCache) Close() error                                             { return nil }

type subBus struct{ subject string }

func (b *subBus) PublishJSON(context.Context, string, any) error { return nil }
func (b *subBus) Subscribe(subject string, _ store.BusHandler) (func() error, error) {
	b.subject = subject
	return func() error { return nil }, nil
}
func (b *subBus) Close() error { return nil }

func TestNew_MountsFacets(t *testing.T) {
	m := New(modkit.Deps{PG: emptyPG{}, Cfg: config.New()})
	if m.Name() != "metrics" {
		t.Fatalf("name = %q", m.Name())
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := stdhttp.Get(srv.URL + "/metrics/facets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
}

func TestNewService_ClickhouseSourceNeedsClickhouse(t *testing.T) {
	t.Setenv("CORE_METRICS_SOURCE", "ch")
	o := FromConfig(config.New())
	if o.Source != SourceCH {
		t.Fatalf("source = %q", o.Source)
	}
	testkit.MustPanic(t, func() { NewService(modkit.Deps{PG: emptyPG{}}, o) })
}

func TestNewService_ListensForImports(t *testing.T) {
	bus := &subBus{}
	svc := NewService(modkit.Deps{PG: emptyPG{}, Cache: nopCache{}, Bus: bus}, FromConfig(config.New()))
	if svc.Cache == nil {
		t.Fatalf("cache not wired")
	}
	if bus.subject != events.DefaultSubject {
		t.Fatalf("subscribed to %q", bus.subject)
	}
}

func TestNewService_NoCacheNoSubscription(t *testing.T) {
	bus := &subBus{}
	svc := NewService(modkit.Deps{PG: emptyPG{}, Bus: bus}, FromConfig(config.New()))
	if svc.Cache != nil || bus.subject != "" {
		t.Fatalf("cache=%v subject=%q", svc.Cache, bus.subject)
	}
}
