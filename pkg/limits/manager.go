package limits

import (
	"sync"
	"time"

	"github.com/rreusch2/fluxstreams/pkg/config"
	"github.com/rreusch2/fluxstreams/pkg/limits/ratelimit"
)

// sweepEvery is how many Check calls pass between idle sweeps.
const sweepEvery = 1024

type entry struct {
	limiter  *ratelimit.Limiter
	lastSeen time.Time
}

// Manager hands out per-client limiters for each route.
type Manager struct {
	enabled  bool
	fallback ratelimit.Config
	routes   map[string]ratelimit.Config
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*entry
	checks  int
}

// NewManager creates a manager from the limits configuration.
func NewManager(cfg config.LimitsConfig) *Manager {
	m := &Manager{
		enabled:  cfg.Enabled,
		fallback: fromConfig(cfg.Default),
		routes:   make(map[string]ratelimit.Config, len(cfg.Routes)),
		now:      time.Now,
		clients:  make(map[string]*entry),
	}
	for route, rl := range cfg.Routes {
		m.routes[route] = fromConfig(rl)
	}
	return m
}

func fromConfig(rl config.RateLimit) ratelimit.Config {
	return ratelimit.Config{PerMinute: rl.PerMinute, PerHour: rl.PerHour, PerDay: rl.PerDay}
}

// Enabled reports whether limits are enforced at all.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// ConfigFor returns the windows applied to route. A route entry replaces
// the default windows entirely.
func (m *Manager) ConfigFor(route string) ratelimit.Config {
	if rl, ok := m.routes[route]; ok {
		return rl
	}
	return m.fallback
}

// Check charges one request by client against route.
func (m *Manager) Check(route, client string) *ratelimit.CheckResult {
	if !m.enabled {
		return &ratelimit.CheckResult{Allowed: true}
	}
	cfg := m.ConfigFor(route)
	if cfg.IsZero() {
		return &ratelimit.CheckResult{Allowed: true}
	}

	key := route + "\x00" + client
	now := m.now()

	m.mu.Lock()
	e, ok := m.clients[key]
	if !ok {
		e = &entry{limiter: ratelimit.NewLimiter(cfg)}
		m.clients[key] = e
	}
	e.lastSeen = now
	m.checks++
	if m.checks%sweepEvery == 0 {
		m.sweepLocked(now)
	}
	m.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked (route, client) pairs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Sweep drops limiters that have been idle long enough to be full again.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked(m.now())
}

func (m *Manager) sweepLocked(now time.Time) {
	for key, e := range m.clients {
		if now.Sub(e.lastSeen) > 24*time.Hour {
			delete(m.clients, key)
		}
	}
}
