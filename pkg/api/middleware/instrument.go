package middleware

import (
	"net/http"
	"time"
)

// HTTPRecorder receives per-route request metrics.
type HTTPRecorder interface {
	RecordHTTPRequest(route string, status int, duration time.Duration)
}

// Instrument records status and latency for route.
func Instrument(route string, rec HTTPRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)
			rec.RecordHTTPRequest(route, rw.statusCode, time.Since(start))
		})
	}
}
