package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucketWithClock(3, 1, clock.Now)

	for i := 0; i < 3; i++ {
		if !bucket.Take(1) {
			t.Fatalf("take %d should succeed on a full bucket", i)
		}
	}
	if bucket.Take(1) {
		t.Fatal("empty bucket should reject")
	}
	if got := bucket.TimeUntilAvailable(1); got != time.Second {
		t.Errorf("TimeUntilAvailable = %v, want 1s", got)
	}

	clock.Advance(1500 * time.Millisecond)
	if got := bucket.Remaining(); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
	if !bucket.Take(1) {
		t.Error("refilled token should be available")
	}

	// The half token left over must not be lost.
	clock.Advance(500 * time.Millisecond)
	if !bucket.Take(1) {
		t.Error("fractional refill should accumulate")
	}

	clock.Advance(time.Hour)
	if got := bucket.Remaining(); got != 3 {
		t.Errorf("Remaining = %d, want capped at 3", got)
	}

	bucket.Take(3)
	bucket.Reset()
	if bucket.Remaining() != bucket.Capacity() {
		t.Error("Reset should refill the bucket")
	}
}

func TestTokenBucket_SlowRefill(t *testing.T) {
	clock := newFakeClock()
	// 10 per minute.
	bucket := newTokenBucketWithClock(10, 10.0/60, clock.Now)
	for bucket.Take(1) {
	}

	for i := 0; i < 6; i++ {
		clock.Advance(time.Second)
		bucket.Remaining()
	}
	if !bucket.Take(1) {
		t.Error("six one-second refills should add one token")
	}
}

func TestLimiter_Windows(t *testing.T) {
	clock := newFakeClock()
	l := newLimiterWithClock(Config{PerMinute: 5, PerHour: 7}, clock.Now)

	for i := 0; i < 5; i++ {
		if res := l.Allow(); !res.Allowed {
			t.Fatalf("request %d rejected: %s", i, res.Reason)
		}
	}

	res := l.Allow()
	if res.Allowed {
		t.Fatal("sixth request in a minute should be rejected")
	}
	if res.Reason != "requests per minute limit exceeded" || res.Limit != 5 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.RetryAfter <= 0 || res.RetryAfter > 12*time.Second {
		t.Errorf("RetryAfter = %v, want about 12s", res.RetryAfter)
	}

	clock.Advance(time.Minute)
	l.Allow()
	l.Allow()
	res = l.Allow()
	if res.Allowed {
		t.Fatal("hour window should now be exhausted")
	}
	if res.Reason != "requests per hour limit exceeded" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestLimiter_AllOrNothing(t *testing.T) {
	clock := newFakeClock()
	l := newLimiterWithClock(Config{PerMinute: 1, PerDay: 100}, clock.Now)

	l.Allow()
	for i := 0; i < 10; i++ {
		l.Allow()
	}

	// Rejected requests must not drain the day window.
	if got := l.windows[1].bucket.Remaining(); got != 99 {
		t.Errorf("day window remaining = %d, want 99", got)
	}
}

func TestLimiter_NoWindows(t *testing.T) {
	l := NewLimiter(Config{})
	for i := 0; i < 100; i++ {
		if !l.Allow().Allowed {
			t.Fatal("limiter without windows should allow everything")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(Config{PerMinute: 50})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow().Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// A few tokens may refill while the goroutines run.
	if allowed < 50 || allowed > 52 {
		t.Errorf("allowed = %d, want about 50", allowed)
	}
}
