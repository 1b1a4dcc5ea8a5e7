package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rreusch2/fluxstreams/pkg/config"
)

// Turn outcomes.
const (
	TurnReply         = "reply"
	TurnLead          = "lead"
	TurnInvalid       = "invalid"
	TurnUpstreamError = "upstream_error"
)

// Delivery statuses.
const (
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// Icebreaker statuses.
const (
	IcebreakerGenerated = "generated"
	IcebreakerFailed    = "failed"
	IcebreakerSkipped   = "skipped"
)

// generationBuckets cover chat completion latencies from 100ms to 60s.
var generationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60}

// Collector owns every fluxstreams metric and the registry they live in.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	turns          *prometheus.CounterVec
	generation     *prometheus.HistogramVec
	providerErrors *prometheus.CounterVec
	providerHealth *prometheus.GaugeVec
	leadParse      *prometheus.CounterVec
	leadDelivery   *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
	icebreakers    *prometheus.CounterVec
}

// NewCollector creates and registers all metrics. If registry is nil a
// fresh one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   generationBuckets,
		}, []string{"route"}),

		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "turns_total",
			Help:      "Total number of conversation turns by outcome",
		}, []string{"outcome"}),

		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "generation_duration_seconds",
			Help:      "Text generation latency in seconds",
			Buckets:   generationBuckets,
		}, []string{"provider"}),

		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "provider_errors_total",
			Help:      "Total number of generation failures by type",
		}, []string{"provider", "error_type"}),

		providerHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "provider_health",
			Help:      "Provider health status (1=healthy, 0=unhealthy)",
		}, []string{"provider"}),

		leadParse: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lead_parse_total",
			Help:      "Total number of parsed lead records by parse tier",
		}, []string{"tier"}),

		leadDelivery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lead_delivery_total",
			Help:      "Total number of lead webhook deliveries by status",
		}, []string{"status"}),

		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}, []string{"route"}),

		icebreakers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "icebreakers_total",
			Help:      "Total number of icebreaker generations by status",
		}, []string{"status"}),
	}

	registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.turns,
		c.generation,
		c.providerErrors,
		c.providerHealth,
		c.leadParse,
		c.leadDelivery,
		c.rateLimited,
		c.icebreakers,
	)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.httpRequests.WithLabelValues(route, statusLabel(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordTurn counts a conversation turn by outcome.
func (c *Collector) RecordTurn(outcome string) {
	if !c.enabled() {
		return
	}
	c.turns.WithLabelValues(outcome).Inc()
}

// RecordGeneration records the latency of one generator call.
func (c *Collector) RecordGeneration(provider string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.generation.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordProviderError counts a failed generator call.
//
// Common error types: "auth", "rate_limit", "timeout", "empty", "server_error".
func (c *Collector) RecordProviderError(provider, errorType string) {
	if !c.enabled() {
		return
	}
	c.providerErrors.WithLabelValues(provider, errorType).Inc()
}

// UpdateProviderHealth sets the provider health gauge.
func (c *Collector) UpdateProviderHealth(provider string, healthy bool) {
	if !c.enabled() {
		return
	}
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.providerHealth.WithLabelValues(provider).Set(value)
}

// RecordLeadParse counts a lead record by the tier that produced it.
func (c *Collector) RecordLeadParse(tier string) {
	if !c.enabled() {
		return
	}
	c.leadParse.WithLabelValues(tier).Inc()
}

// RecordDelivery counts a webhook delivery attempt.
func (c *Collector) RecordDelivery(status string) {
	if !c.enabled() {
		return
	}
	c.leadDelivery.WithLabelValues(status).Inc()
}

// RecordRateLimited counts a rejected request.
func (c *Collector) RecordRateLimited(route string) {
	if !c.enabled() {
		return
	}
	c.rateLimited.WithLabelValues(route).Inc()
}

// RecordIcebreaker counts one enrichment row.
func (c *Collector) RecordIcebreaker(status string) {
	if !c.enabled() {
		return
	}
	c.icebreakers.WithLabelValues(status).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
