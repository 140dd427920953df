package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"github.com/maurolguin1/ig-moderation/internal/platform/net/middleware"
)

// StackOptions tunes the /api middleware stack
type StackOptions struct {
	// Service names the otel server spans, empty disables tracing
	Service string

	// CORSOrigins are the allowed browser origins, empty allows none
	CORSOrigins []string

	// Slow marks access log lines as warn, 0 disables
	Slow time.Duration

	// Timeout caps each request, 0 means 30s
	Timeout time.Duration
}

// Stack returns the API middleware, outermost first
func Stack(o StackOptions) []func(http.Handler) http.Handler {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var stack []func(http.Handler) http.Handler
	if o.Service != "" {
		stack = append(stack, middleware.OTel(o.Service))
	}
	return append(stack,
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.StripSlashes(),
		middleware.Timeout(timeout),
	)
}

// Throttle caps in flight requests on one module's routes; extra ones queue up to wait, then get 429.
// A limit <= 0 yields no middleware
func Throttle(limit int, wait time.Duration) []func(http.Handler) http.Handler {
	if limit <= 0 {
		return nil
	}
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return []func(http.Handler) http.Handler{middleware.Throttle(limit, wait)}
}
