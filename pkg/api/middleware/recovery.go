package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/rreusch2/fluxstreams/pkg/api/types"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/logging"
)

// Recovery turns a handler panic into a 500 and logs the stack. Internal
// details never reach the client.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logging.FromContext(r.Context(), logger).Error("panic in handler",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				types.WriteError(w, http.StatusInternalServerError, "An internal error occurred. Please try again later.")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
