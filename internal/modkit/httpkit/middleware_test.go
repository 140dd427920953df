package httpkit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
)

func applyStack(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func TestStack_RequestReachesHandlerWithID(t *testing.T) {
	var rid string
	root := applyStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusNoContent)
	}), Stack(StackOptions{Service: "igmod-api"}))

	req := httptest.NewRequest(http.MethodGet, "/metrics/facets", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent || rid != "rid-1" {
		t.Fatalf("status=%d rid=%q", rr.Code, rid)
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("NoCache missing from stack")
	}
}

func TestStack_PanicBecomes500Envelope(t *testing.T) {
	m := chi.NewRouter()
	MountAPIV1(phttp.AdaptChi(m), Stack(StackOptions{}), func(api Router) {
		Post(api, "/imports/{id}/finish", func(*http.Request) (any, error) { panic("boom") })
	})

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/imports/j1/finish", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestStack_CORSPreflightForAllowedOrigin(t *testing.T) {
	root := applyStack(http.NotFoundHandler(), Stack(StackOptions{CORSOrigins: []string{"https://mod.example"}, Timeout: time.Second}))

	req := httptest.NewRequest(http.MethodOptions, "/search", nil)
	req.Header.Set("Origin", "https://mod.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://mod.example" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestThrottle(t *testing.T) {
	if Throttle(0, time.Second) != nil {
		t.Fatalf("a zero limit should add nothing")
	}

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	root := applyStack(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		entered <- struct{}{}
		<-release
	}), Throttle(1, 10*time.Millisecond))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		root.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/imports", nil))
	}()
	<-entered

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/imports", nil))
	close(release)
	wg.Wait()

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rr.Code)
	}
}
