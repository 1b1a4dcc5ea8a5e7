package providers

import (
	"log/slog"
	"sync"
	"time"
)

// UnhealthyThreshold is the number of consecutive failures after which a
// provider is reported unhealthy.
const UnhealthyThreshold = 3

// Health summarises a provider's recent request history.
type Health struct {
	// IsHealthy is false after UnhealthyThreshold consecutive failures
	IsHealthy bool `json:"healthy"`

	// LastError is the most recent failure message (empty if healthy)
	LastError string `json:"last_error,omitempty"`

	// ConsecutiveFailures counts sequential failed requests
	ConsecutiveFailures int `json:"consecutive_failures"`

	// LastSuccess is the time of the last successful request
	LastSuccess time.Time `json:"last_success,omitempty"`

	// TotalRequests is the total number of requests sent
	TotalRequests int64 `json:"total_requests"`

	// FailedRequests is the total number of failed requests
	FailedRequests int64 `json:"failed_requests"`
}

// HealthTracker records request outcomes for one provider. It is safe for
// concurrent use; adapters embed one and update it after every call.
type HealthTracker struct {
	name   string
	mu     sync.RWMutex
	health Health
}

// NewHealthTracker returns a tracker that starts healthy.
func NewHealthTracker(name string) *HealthTracker {
	return &HealthTracker{
		name:   name,
		health: Health{IsHealthy: true},
	}
}

// Record registers the outcome of one request.
func (t *HealthTracker) Record(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.health.TotalRequests++
	if err == nil {
		if !t.health.IsHealthy {
			slog.Info("provider marked healthy",
				"provider", t.name,
				"previous_failures", t.health.ConsecutiveFailures,
			)
		}
		t.health.IsHealthy = true
		t.health.ConsecutiveFailures = 0
		t.health.LastError = ""
		t.health.LastSuccess = time.Now()
		return
	}

	t.health.FailedRequests++
	t.health.ConsecutiveFailures++
	t.health.LastError = err.Error()

	if t.health.IsHealthy && t.health.ConsecutiveFailures >= UnhealthyThreshold {
		t.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", t.name,
			"consecutive_failures", t.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// Snapshot returns a copy of the current health.
func (t *HealthTracker) Snapshot() Health {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.health
}
