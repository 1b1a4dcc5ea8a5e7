package middleware

import (
	"net"
	"net/http"

	"github.com/rreusch2/fluxstreams/pkg/telemetry/logging"
)

// ClientIP stores the caller's address in the context. It uses the
// connection's remote address only; forwarded headers are not trusted.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithClientIP(r.Context(), remoteHost(r.RemoteAddr))))
	})
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
