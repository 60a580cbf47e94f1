package plancache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports cache counters for an external metrics sink. All methods
// are nil-receiver safe so the cache can run unmetered.
type Metrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	size        prometheus.Gauge
}

// NewMetrics registers the cache collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainarr_plan_cache_hits_total",
			Help: "Plan cache lookups that returned a live entry.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainarr_plan_cache_misses_total",
			Help: "Plan cache lookups that found nothing usable.",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainarr_plan_cache_evictions_total",
			Help: "Entries evicted by LRU pressure or invalidation.",
		}),
		expirations: factory.NewCounter(prometheus.CounterOpts{
			Name: "brainarr_plan_cache_expirations_total",
			Help: "Entries removed lazily after their TTL passed.",
		}),
		size: factory.NewGauge(prometheus.GaugeOpts{
			Name: "brainarr_plan_cache_size",
			Help: "Current number of cached plans.",
		}),
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) evicted(n int) {
	if m != nil && n > 0 {
		m.evictions.Add(float64(n))
	}
}

func (m *Metrics) expired() {
	if m != nil {
		m.expirations.Inc()
	}
}

func (m *Metrics) setSize(n int) {
	if m != nil {
		m.size.Set(float64(n))
	}
}
