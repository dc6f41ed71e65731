package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the donation workflows.
type Metrics struct {
	Scheduled            prometheus.Counter
	Finalized            prometheus.Counter
	Canceled             prometheus.Counter
	EligibilityRejected  *prometheus.CounterVec
	LivesSaved           prometheus.Counter
	BloodUnitsCollected  prometheus.Counter
	CountersReconciled   *prometheus.CounterVec
	FinalizeDurationSecs prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Scheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_donations_scheduled_total",
			Help: "Donation schedules created",
		}),
		Finalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_donations_finalized_total",
			Help: "Schedules closed out with a donation record",
		}),
		Canceled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_schedules_canceled_total",
			Help: "Schedules canceled by an admin",
		}),
		EligibilityRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_eligibility_rejections_total",
			Help: "Scheduling attempts rejected by the eligibility rules",
		}, []string{"reason"}),
		LivesSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_lives_saved_total",
			Help: "Lives saved credited through record updates",
		}),
		BloodUnitsCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_blood_units_collected_total",
			Help: "Blood units recorded at finalization",
		}),
		CountersReconciled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_counters_reconciled_total",
			Help: "Counter rows corrected by reconciliation",
		}, []string{"table"}),
		FinalizeDurationSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lifeline_finalize_duration_seconds",
			Help:    "Time spent in the finalization transaction",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementScheduled() {
	if m != nil {
		m.Scheduled.Inc()
	}
}

func (m *Metrics) IncrementFinalized(bloodAmount float64) {
	if m != nil {
		m.Finalized.Inc()
		m.BloodUnitsCollected.Add(bloodAmount)
	}
}

func (m *Metrics) IncrementCanceled() {
	if m != nil {
		m.Canceled.Inc()
	}
}

func (m *Metrics) IncrementEligibilityRejected(reason string) {
	if m != nil {
		m.EligibilityRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) AddLivesSaved(n int) {
	if m != nil {
		m.LivesSaved.Add(float64(n))
	}
}

func (m *Metrics) AddReconciled(table string, n int) {
	if m != nil && n > 0 {
		m.CountersReconciled.WithLabelValues(table).Add(float64(n))
	}
}

func (m *Metrics) ObserveFinalizeDuration(seconds float64) {
	if m != nil {
		m.FinalizeDurationSecs.Observe(seconds)
	}
}
