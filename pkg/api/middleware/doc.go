// Package middleware provides the HTTP middleware used by the API server.
//
// # Chain
//
// Global middleware wraps the whole mux, outermost first:
//
//	Recovery -> RequestID -> ClientIP -> Tracing -> Logging -> CORS -> mux
//
// Per-route middleware wraps each registered handler:
//
//	Instrument(route) -> RateLimit(route) -> handler
//
// Per-route wrapping gives metrics and limits a bounded route label
// instead of the raw request path.
//
// # Request ID
//
// RequestID reuses a well-formed X-Request-ID from the caller or generates
// a UUID v4, stores it in the context and echoes it in the response.
//
// # Rate limits
//
// RateLimit charges one request per client IP against the route's windows
// and answers 429 with Retry-After when a window is exhausted:
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: 6
//	X-RateLimit-Limit: 10
//	X-RateLimit-Remaining: 0
//
//	{"error": "Rate limit exceeded: requests per minute limit exceeded"}
package middleware
