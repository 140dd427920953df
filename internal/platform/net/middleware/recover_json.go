package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "github.com/maurolguin1/ig-moderation/internal/platform/errors"
	"github.com/maurolguin1/ig-moderation/internal/platform/logger"
	pnet "github.com/maurolguin1/ig-moderation/internal/platform/net"
	phttp "github.com/maurolguin1/ig-moderation/internal/platform/net/http"
)

// RecoverJSON turns a panic into the standard 500 error envelope and logs the stack.
// http.ErrAbortHandler is re-panicked so net/http can drop the connection
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("panic recovered")

			if reqID := pnet.RequestID(r.Context()); reqID != "" {
				w.Header().Set("X-Request-Id", reqID)
			}
			phttp.RespondError(w, r, perr.PanicErrf("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
