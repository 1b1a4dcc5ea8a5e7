// Package ratelimit implements request rate limiting with token buckets.
//
// A Limiter enforces up to three windows at once (per minute, per hour,
// per day). Each window is a TokenBucket whose capacity is the window's
// allowance and whose refill rate spreads that allowance over the window,
// so a client may burst up to the allowance and then recovers gradually.
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{PerMinute: 5, PerHour: 50, PerDay: 200})
//	if res := limiter.Allow(); !res.Allowed {
//	    // reject, advise res.RetryAfter
//	}
//
// A request is charged to every window or to none.
package ratelimit
