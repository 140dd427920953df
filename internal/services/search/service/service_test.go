package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/adapters/sheet"
	"github.com/maurolguin1/ig-moderation/internal/modkit/repokit"
	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/store"
	"github.com/maurolguin1/ig-moderation/internal/platform/testkit"
	"github.com/maurolguin1/ig-moderation/internal/services/search/domain"
	"github.com/maurolguin1/ig-moderation/internal/services/search/query"
)

// memRepo returns canned comments and remembers the last spec
type memRepo struct {
	items []domain.Comment
	total int
	names []string

	spec       query.QuerySpec
	prefix     string
	suggestMax int
}

func (m *memRepo) Find(_ context.Context, spec query.QuerySpec) ([]domain.Comment, int, error) {
	m.spec = spec
	end := min(len(m.items), spec.Limit)
	return m.items[:end], m.total, nil
}

func (m *memRepo) Usernames(_ context.Context, prefix string, limit int) ([]string, error) {
	m.prefix, m.suggestMax = prefix, limit
	return m.names, nil
}

type fakeTx struct{}

func (fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(nil)
}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }

func newTestService(repo *memRepo, cfg Config) *Service {
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return repo })
	return New(fakeTx{}, binder, cfg)
}

func strp(s string) *string { return &s }

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return &memRepo{} })
	testkit.MustPanic(t, func() { New(nil, binder, Config{}) })
	testkit.MustPanic(t, func() { New(fakeTx{}, nil, Config{}) })
	if s := New(fakeTx{}, binder, Config{}); s.Cfg.ExportMaxRows != DefaultExportMaxRows {
		t.Fatalf("ExportMaxRows = %d", s.Cfg.ExportMaxRows)
	}
}

func TestSearch_ClampsAndNeverReturnsNil(t *testing.T) {
	t.Parallel()

	repo := &memRepo{total: 0}
	s := newTestService(repo, Config{})

	p, err := s.Search(context.Background(), domain.SearchFilter{Page: 2, Limit: 1000})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.Items == nil || len(p.Items) != 0 {
		t.Fatalf("items = %#v", p.Items)
	}
	if p.Page != 2 || p.Limit != query.MaxLimit || repo.spec.Offset != query.MaxLimit {
		t.Fatalf("page = %+v spec = %+v", p, repo.spec)
	}
}

func TestSearch_PassesTotal(t *testing.T) {
	t.Parallel()

	repo := &memRepo{items: []domain.Comment{{ID: 1}, {ID: 2}}, total: 7}
	p, err := newTestService(repo, Config{}).Search(context.Background(), domain.SearchFilter{Q: "troll*"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if p.Total != 7 || len(p.Items) != 2 {
		t.Fatalf("page = %+v", p)
	}
	if len(repo.spec.Text.PrefixTerms) != 1 {
		t.Fatalf("text not tokenized: %+v", repo.spec.Text)
	}
}

func TestSearch_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestService(&memRepo{}, Config{}).Search(ctx, domain.SearchFilter{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestSuggestUsernames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		q       string
		limit   int
		wantMax int
		called  bool
	}{
		{"blank", "  ", 5, 0, false},
		{"default limit", "an", 0, DefaultSuggestLimit, true},
		{"capped", "an", 500, MaxSuggestLimit, true},
		{"kept", " an ", 3, 3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &memRepo{}
			got, err := newTestService(repo, Config{}).SuggestUsernames(context.Background(), tc.q, tc.limit)
			if err != nil {
				t.Fatalf("SuggestUsernames: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("got %#v, want empty non nil", got)
			}
			if tc.called != (repo.prefix != "") {
				t.Fatalf("repo called = %v", repo.prefix != "")
			}
			if tc.called && (repo.prefix != "an" || repo.suggestMax != tc.wantMax) {
				t.Fatalf("prefix=%q limit=%d", repo.prefix, repo.suggestMax)
			}
		})
	}
}

func TestParseExportFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]domain.ExportFormat{"": domain.ExportXLSX, "CSV": domain.ExportCSV, " xlsx ": domain.ExportXLSX} {
		got, err := ParseExportFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseExportFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseExportFormat("pdf"); perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("pdf err = %v", err)
	}
}

func exportFixture() *memRepo {
	at := time.Date(2025, 8, 7, 10, 0, 0, 0, time.UTC)
	lvl := 3
	return &memRepo{
		items: []domain.Comment{
			{ID: 1, ExternalID: strp("17912345678901234567"), Username: strp("ana"), Text: "you troll", OccurredAt: &at, AggressionLevel: &lvl, IsAttack: true, VideoSource: strp("clip")},
			{ID: 2, Username: strp("bob"), Text: "nice, thanks"},
		},
		total: 2,
	}
}

func TestExport_CSV(t *testing.T) {
	t.Parallel()

	repo := exportFixture()
	f, err := newTestService(repo, Config{ExportMaxRows: 10}).Export(context.Background(), domain.ExportInput{
		Filter: domain.SearchFilter{Page: 4, Limit: 1},
		Format: domain.ExportCSV,
		Title:  "weekly: report",
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if repo.spec.Page != 1 || repo.spec.Limit != 10 {
		t.Fatalf("export spec = %+v", repo.spec)
	}
	if f.Name != "weekly- report.csv" || f.ContentType != ContentTypeCSV {
		t.Fatalf("file = %q %q", f.Name, f.ContentType)
	}

	lines := strings.Split(strings.TrimSpace(string(f.Body)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != strings.Join(ExportHeaders(), ",") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "17912345678901234567,ana,,,you troll,2025-08-07T10:00:00Z,,3,") ||
		!strings.HasSuffix(lines[1], ",sí,,clip") {
		t.Fatalf("row = %q", lines[1])
	}
	if !strings.Contains(lines[2], `"nice, thanks"`) || !strings.HasSuffix(lines[2], ",no,,") {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestExport_XLSXReadsBack(t *testing.T) {
	t.Parallel()

	f, err := newTestService(exportFixture(), Config{}).Export(context.Background(), domain.ExportInput{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if f.Name != "export.xlsx" || f.ContentType != ContentTypeXLSX {
		t.Fatalf("file = %q %q", f.Name, f.ContentType)
	}

	recs, err := sheet.NewReader().Read(f.Name, f.Body)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d", len(recs))
	}
	first := recs[0].Fields
	if first["Comment Id"] != "17912345678901234567" || first["Es_Ataque"] != "sí" || first["Video Source"] != "clip" {
		t.Fatalf("first = %#v", first)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	repo := exportFixture()
	_, err := newTestService(repo, Config{}).Export(context.Background(), domain.ExportInput{Format: "pdf"})
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("err = %v", err)
	}
	if repo.spec.Limit != 0 {
		t.Fatalf("repo queried for a bad format")
	}
}
