package modkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
	"github.com/maurolguin1/ig-moderation/internal/platform/testkit"
)

func tag(log *[]string, s string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*log = append(*log, s)
			next.ServeHTTP(w, r)
		})
	}
}

func TestBuild_LaterOptionsOverrideDefaults(t *testing.T) {
	t.Parallel()
	b := Build(WithName("imports"), WithPrefix("/imports"), WithPrefix("/uploads"))
	if b.Name != "imports" || b.Prefix != "/uploads" {
		t.Fatalf("built = %+v", b)
	}
	if b.Ports != nil || len(b.Mw) != 0 {
		t.Fatalf("unexpected ports or middleware: %+v", b)
	}
}

func TestBuild_CopiesMiddlewareSlice(t *testing.T) {
	t.Parallel()
	var log []string
	mws := []func(http.Handler) http.Handler{tag(&log, "a")}
	b := Build(WithMiddlewares(mws...))
	mws[0] = tag(&log, "b")

	h := b.Mw[0](http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(log, ",") != "a" {
		t.Fatalf("caller mutation leaked into Built: %v", log)
	}
}

func TestBuilt_Mount_ScopesMiddlewareInOrder(t *testing.T) {
	t.Parallel()
	var log []string
	b := Build(
		WithName("metrics"),
		WithPrefix("metrics/"),
		WithMiddlewares(tag(&log, "first")),
		WithMiddlewares(tag(&log, "second")),
	)

	mux := chi.NewRouter()
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	b.Mount(phttp.AdaptChi(mux), func(r phttp.Router) {
		r.Get("/facets", func(w http.ResponseWriter, _ *http.Request) { log = append(log, "handler") })
	})

	tests := []struct {
		path string
		code int
		log  string
	}{
		{"/metrics/facets", http.StatusOK, "first,second,handler"},
		{"/healthz", http.StatusNoContent, ""},
	}
	for _, tc := range tests {
		log = nil
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.code || strings.Join(log, ",") != tc.log {
			t.Fatalf("%s: code=%d log=%v", tc.path, rec.Code, log)
		}
	}
}

func TestBuilt_Mount_RejectsMissingNameOrPrefix(t *testing.T) {
	t.Parallel()
	r := phttp.AdaptChi(chi.NewRouter())
	noop := func(phttp.Router) {}
	testkit.MustPanic(t, func() { Build(WithPrefix("/x")).Mount(r, noop) })
	testkit.MustPanic(t, func() { Build(WithName("x")).Mount(r, noop) })
}
