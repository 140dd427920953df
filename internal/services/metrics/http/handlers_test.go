package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/services/metrics/domain"
)

type fakeSvc struct {
	got []domain.SearchFilter
}

func (f *fakeSvc) Facets(context.Context) (domain.Facets, error) {
	return domain.Facets{Total: 4, AttackCount: 1, AttackPct: 25, CountsByLevel: []domain.LevelCount{{Level: 1, Count: 4}}}, nil
}

func (f *fakeSvc) CompareGroups(_ context.Context, fs []domain.SearchFilter) ([]domain.GroupMetrics, error) {
	f.got = fs
	if len(fs) == 0 {
		return nil, perr.BadRequestf("at least one group is required")
	}
	out := make([]domain.GroupMetrics, len(fs))
	for i := range fs {
		out[i] = domain.GroupMetrics{Total: i}
	}
	return out, nil
}

func newServer(t *testing.T, s domain.ServicePort) *httptest.Server {
	t.Helper()
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), s)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFacets(t *testing.T) {
	t.Parallel()

	srv := newServer(t, &fakeSvc{})
	res, err := stdhttp.Get(srv.URL + "/facets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = res.Body.Close() }()

	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data["attack_pct"] != float64(25) || env.Data["counts_by_level"] == nil {
		t.Fatalf("data = %v", env.Data)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		status int
		groups int
	}{
		{"two groups", `[{"username":"a"},{"attack":true}]`, stdhttp.StatusOK, 2},
		{"empty array", `[]`, stdhttp.StatusBadRequest, 0},
		{"object instead of array", `{"username":"a"}`, 0, 0},
		{"bad date in one group", `[{"from":"yesterday"}]`, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := &fakeSvc{}
			srv := newServer(t, fs)
			res, err := stdhttp.Post(srv.URL+"/compare", "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			_ = res.Body.Close()
			if tc.status == 0 {
				if res.StatusCode < 400 || res.StatusCode >= 500 {
					t.Fatalf("status = %d, want 4xx", res.StatusCode)
				}
				return
			}
			if res.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", res.StatusCode, tc.status)
			}
			if len(fs.got) != tc.groups {
				t.Fatalf("groups = %d", len(fs.got))
			}
		})
	}
}
