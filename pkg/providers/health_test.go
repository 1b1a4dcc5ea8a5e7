package providers

import (
	"errors"
	"sync"
	"testing"
)

func TestHealthTracker(t *testing.T) {
	tracker := NewHealthTracker("deepseek")

	if !tracker.Snapshot().IsHealthy {
		t.Fatal("tracker should start healthy")
	}

	boom := errors.New("boom")
	for i := 0; i < UnhealthyThreshold-1; i++ {
		tracker.Record(boom)
	}
	if !tracker.Snapshot().IsHealthy {
		t.Error("should stay healthy below the threshold")
	}

	tracker.Record(boom)
	h := tracker.Snapshot()
	if h.IsHealthy {
		t.Error("should be unhealthy at the threshold")
	}
	if h.ConsecutiveFailures != UnhealthyThreshold || h.LastError != "boom" {
		t.Errorf("unexpected health %+v", h)
	}

	tracker.Record(nil)
	h = tracker.Snapshot()
	if !h.IsHealthy || h.ConsecutiveFailures != 0 || h.LastError != "" {
		t.Errorf("success should reset health, got %+v", h)
	}
	if h.TotalRequests != int64(UnhealthyThreshold+1) || h.FailedRequests != int64(UnhealthyThreshold) {
		t.Errorf("unexpected counters %+v", h)
	}
	if h.LastSuccess.IsZero() {
		t.Error("last success not recorded")
	}
}

func TestHealthTracker_Concurrent(t *testing.T) {
	tracker := NewHealthTracker("x")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				tracker.Record(nil)
			} else {
				tracker.Record(errors.New("fail"))
			}
			_ = tracker.Snapshot()
		}(i)
	}
	wg.Wait()

	if got := tracker.Snapshot().TotalRequests; got != 50 {
		t.Errorf("total requests = %d, want 50", got)
	}
}
