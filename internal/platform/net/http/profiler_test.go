package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maurolguin1/ig-moderation/internal/platform/config"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
)

func serve(r phttp.Router, path string) int {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec.Code
}

func TestMountProfiler(t *testing.T) {
	cases := []struct {
		name    string
		enabled bool
		path    string
		want    []int
	}{
		{"index", true, "/debug/pprof/", []int{http.StatusOK}},
		{"cmdline", true, "/debug/pprof/cmdline", []int{http.StatusOK}},
		{"bare prefix redirects", true, "/debug", []int{http.StatusMovedPermanently, http.StatusPermanentRedirect, http.StatusNotFound}},
		{"disabled", false, "/debug/pprof/", []int{http.StatusNotFound}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := phttp.NewServer(config.New()).Router()
			phttp.MountProfiler(r, "/debug", tc.enabled)

			got := serve(r, tc.path)
			for _, w := range tc.want {
				if got == w {
					return
				}
			}
			t.Fatalf("GET %s = %d, want one of %v", tc.path, got, tc.want)
		})
	}
}
