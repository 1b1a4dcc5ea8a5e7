// Package limits applies per-client rate limits to API routes.
//
// Each (route, client) pair gets its own ratelimit.Limiter, created on
// first use from the route's configured windows or the default windows.
// Limiters idle for longer than the longest window are evicted, since a
// fresh limiter starts in the same full state.
//
//	mgr := limits.NewManager(cfg.Limits)
//	res := mgr.Check("/api/chatbot", clientIP)
//
// State lives in memory only and resets on restart.
package limits
