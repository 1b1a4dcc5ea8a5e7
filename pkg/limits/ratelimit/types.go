package ratelimit

import "time"

// Config sets the allowance per window. Zero disables a window.
type Config struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// IsZero reports whether no window is limited.
func (c Config) IsZero() bool {
	return c.PerMinute <= 0 && c.PerHour <= 0 && c.PerDay <= 0
}

// CheckResult contains the result of a rate limit check.
type CheckResult struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Reason names the exhausted window (if Allowed=false).
	Reason string

	// Limit is the allowance of the tightest window.
	Limit int64

	// Remaining is how many requests that window still admits.
	Remaining int64

	// RetryAfter suggests how long to wait before retrying.
	RetryAfter time.Duration
}
