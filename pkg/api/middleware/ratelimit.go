package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/rreusch2/fluxstreams/pkg/api/types"
	"github.com/rreusch2/fluxstreams/pkg/limits/ratelimit"
	"github.com/rreusch2/fluxstreams/pkg/telemetry/logging"
)

// Limiter decides whether a client may call a route.
type Limiter interface {
	Check(route, client string) *ratelimit.CheckResult
}

// RateLimitRecorder counts rejected requests.
type RateLimitRecorder interface {
	RecordRateLimited(route string)
}

// RateLimit rejects requests over the route's per-client limits with 429.
func RateLimit(route string, limiter Limiter, rec RateLimitRecorder, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := logging.GetClientIP(r.Context())
			if client == "" {
				client = remoteHost(r.RemoteAddr)
			}

			result := limiter.Check(route, client)
			if result.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			}
			if result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int64(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))

			rec.RecordRateLimited(route)
			logging.FromContext(r.Context(), logger).Warn("rate limit exceeded",
				"route", route,
				"reason", result.Reason,
				"retry_after_s", retryAfter,
			)
			types.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded: "+result.Reason)
		})
	}
}
