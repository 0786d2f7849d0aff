// Package metrics provides Prometheus metrics for the destinations layer.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "destinations"

// Metrics implements the observer interfaces of the cache, dedup, providers
// and imagery packages.
type Metrics struct {
	CacheLookups         *prometheus.CounterVec
	ProviderRequests     *prometheus.CounterVec
	ProviderDuration     *prometheus.HistogramVec
	DedupJoins           prometheus.Counter
	PlaceholderFallbacks prometheus.Counter
}

// New creates Metrics and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by resource and result (hit or miss).",
		}, []string{"resource", "result"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider calls in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 9),
		}, []string{"provider"}),
		DedupJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dedup_joins_total",
			Help:      "Callers that joined an in-flight request instead of starting one.",
		}),
		PlaceholderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_placeholder_fallbacks_total",
			Help:      "Images served from the placeholder service.",
		}),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register destination metrics: %w", err)
	}
	return m, nil
}

// CacheHit records a fresh cache read.
func (m *Metrics) CacheHit(resource string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(resource, "hit").Inc()
}

// CacheMiss records an absent, stale or unreadable cache entry.
func (m *Metrics) CacheMiss(resource string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(resource, "miss").Inc()
}

// ProviderRequest records one provider call.
func (m *Metrics) ProviderRequest(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// DedupJoined records a caller joining an in-flight request.
func (m *Metrics) DedupJoined(string) {
	if m == nil {
		return
	}
	m.DedupJoins.Inc()
}

// PlaceholderUsed records a placeholder image fallback.
func (m *Metrics) PlaceholderUsed() {
	if m == nil {
		return
	}
	m.PlaceholderFallbacks.Inc()
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.CacheLookups.Describe(ch)
	m.ProviderRequests.Describe(ch)
	m.ProviderDuration.Describe(ch)
	ch <- m.DedupJoins.Desc()
	ch <- m.PlaceholderFallbacks.Desc()
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.CacheLookups.Collect(ch)
	m.ProviderRequests.Collect(ch)
	m.ProviderDuration.Collect(ch)
	ch <- m.DedupJoins
	ch <- m.PlaceholderFallbacks
}
