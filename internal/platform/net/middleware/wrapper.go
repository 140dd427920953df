// Package middleware wraps chi, cors and otel middleware so callers never import them directly
package middleware

import (
	"net/http"
	"time"

	pstrings "github.com/maurolguin1/ig-moderation/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestID attaches or propagates X-Request-Id and stores it on context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP sets RemoteAddr from X-Forwarded-For / X-Real-IP
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache disables client and proxy caching; search results go stale on every import
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Compress wraps chi's compressor; level is a compress/flate level
func Compress(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level, "application/json", "text/csv", "text/plain")
	return c.Handler
}

// StripSlashes routes /imports/ as /imports
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Throttle caps in flight requests; extra ones wait up to wait in a backlog of the same size, then get 429
func Throttle(limit int, wait time.Duration) func(http.Handler) http.Handler {
	return chimw.ThrottleBacklog(limit, limit, wait)
}

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAge         int
}

// CORS wraps go-chi/cors; empty fields take the API's defaults
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-Id"}),
		// export and log downloads name their file here
		ExposedHeaders: pstrings.IfEmpty(o.ExposedHeaders, []string{"Content-Disposition", "X-Request-Id"}),
		MaxAge:         o.MaxAge,
	})
}

// OTel opens a server span per request and extracts incoming trace headers
func OTel(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service)
	}
}
