package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheErrors    prometheus.Counter
	BreakerOpen    prometheus.Gauge
	BuildDurations prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_leaderboard_cache_hits_total",
			Help: "Leaderboard reads served from Redis",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_leaderboard_cache_misses_total",
			Help: "Leaderboard reads that went to the store",
		}),
		CacheErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_leaderboard_cache_errors_total",
			Help: "Redis errors on the leaderboard path",
		}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "lifeline_leaderboard_cache_breaker_open",
			Help: "1 while the leaderboard cache breaker is open",
		}),
		BuildDurations: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifeline_leaderboard_build_duration_seconds",
			Help:    "Time to rank donors from the store",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncrementMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) IncrementError() {
	if m != nil {
		m.CacheErrors.Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}

func (m *Metrics) ObserveBuild(seconds float64) {
	if m != nil {
		m.BuildDurations.Observe(seconds)
	}
}
