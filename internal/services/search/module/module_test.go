package module

import (
	"context"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/maurolguin1/ig-moderation/internal/modkit"
	"github.com/maurolguin1/ig-moderation/internal/modkit/module"
	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
)

// recPG records statements and answers every query with no rows
type recPG struct {
	mu  sync.Mutex
	sql []string
}

type noRows struct{}

func (noRows) Next() bool        { return false }
func (noRows) Scan(...any) error { return nil }
func (noRows) Err() error        { return nil }
func (noRows) Close()            {}
func (noRows) Columns() []string { return nil }

func (p *recPG) rec(sql string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sql = append(p.sql, strings.TrimSpace(sql))
}

func (p *recPG) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	p.rec(sql)
	return nil, nil
}

func (p *recPG) Query(_ context.Context, sql string, _ ...any) (store.Rows, error) {
	p.rec(sql)
	return noRows{}, nil
}

func (p *recPG) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (p *recPG) Tx(_ context.Context, fn func(q store.RowQuerier) error) error { return fn(p) }

func TestNew_SuggestRunsUnderStatementTimeout(t *testing.T) {
	t.Setenv("CORE_SEARCH_STATEMENT_TIMEOUT", "2s")
	pg := &recPG{}
	m := New(modkit.Deps{PG: pg, Cfg: config.New()})

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/search/suggest/username?q=ali", nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body)
	}

	if len(pg.sql) != 2 {
		t.Fatalf("sql = %q", pg.sql)
	}
	if pg.sql[0] != "SET LOCAL statement_timeout = 2000" {
		t.Fatalf("first statement = %q", pg.sql[0])
	}
	if !strings.Contains(pg.sql[1], "SELECT DISTINCT username") {
		t.Fatalf("second statement = %q", pg.sql[1])
	}
}

func TestFromConfig_ZeroTimeoutSkipsHook(t *testing.T) {
	t.Setenv("CORE_SEARCH_STATEMENT_TIMEOUT", "0s")
	pg := &recPG{}
	svc := NewService(modkit.Deps{PG: pg}, FromConfig(config.New()))
	if _, err := svc.SuggestUsernames(context.Background(), "bo", 5); err != nil {
		t.Fatal(err)
	}
	if len(pg.sql) != 1 || strings.HasPrefix(pg.sql[0], "SET") {
		t.Fatalf("sql = %q", pg.sql)
	}
}

func TestNewExport_ReusesSearchService(t *testing.T) {
	search := New(modkit.Deps{PG: &recPG{}, Cfg: config.New()})
	shared := module.MustPortsOf[domain.ServicePort](search)

	export := NewExport(modkit.Deps{}, modkit.WithPorts(shared))
	if export.Name() != "export" {
		t.Fatalf("name = %q", export.Name())
	}
	if got := module.MustPortsOf[domain.ServicePort](export); got != shared {
		t.Fatalf("export built its own service")
	}
}
