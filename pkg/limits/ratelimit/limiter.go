package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	name   string
	bucket *TokenBucket
}

// Limiter enforces every configured window for one client.
type Limiter struct {
	windows []window
	mu      sync.Mutex
}

// NewLimiter creates a limiter. Only positive allowances are enforced.
func NewLimiter(cfg Config) *Limiter {
	return newLimiterWithClock(cfg, time.Now)
}

func newLimiterWithClock(cfg Config, now func() time.Time) *Limiter {
	l := &Limiter{}
	add := func(name string, allowance int, period time.Duration) {
		if allowance <= 0 {
			return
		}
		l.windows = append(l.windows, window{
			name:   name,
			bucket: newTokenBucketWithClock(int64(allowance), float64(allowance)/period.Seconds(), now),
		})
	}
	add("minute", cfg.PerMinute, time.Minute)
	add("hour", cfg.PerHour, time.Hour)
	add("day", cfg.PerDay, 24*time.Hour)
	return l
}

// Allow charges one request against every window. If any window is
// exhausted nothing is charged and the result names the window that
// frees up last.
func (l *Limiter) Allow() *CheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	var blocked *CheckResult
	for _, w := range l.windows {
		wait := w.bucket.TimeUntilAvailable(1)
		if wait == 0 {
			continue
		}
		if blocked == nil || wait > blocked.RetryAfter {
			blocked = &CheckResult{
				Allowed:    false,
				Reason:     "requests per " + w.name + " limit exceeded",
				Limit:      w.bucket.Capacity(),
				Remaining:  w.bucket.Remaining(),
				RetryAfter: wait,
			}
		}
	}
	if blocked != nil {
		return blocked
	}

	res := &CheckResult{Allowed: true, Remaining: -1}
	for _, w := range l.windows {
		w.bucket.Take(1)
		if rem := w.bucket.Remaining(); res.Remaining < 0 || rem < res.Remaining {
			res.Remaining = rem
			res.Limit = w.bucket.Capacity()
		}
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res
}
