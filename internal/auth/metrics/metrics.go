package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the account module.
type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	TokensRefresh prometheus.Counter
	Logouts       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lifeline_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "invalid_credentials", "inactive", "locked"
		TokensRefresh: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_tokens_refreshed_total",
			Help: "Access tokens issued from a refresh token",
		}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lifeline_logouts_total",
			Help: "Access tokens revoked by logout",
		}),
	}
}

func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementRefresh() {
	if m != nil {
		m.TokensRefresh.Inc()
	}
}

func (m *Metrics) IncrementLogout() {
	if m != nil {
		m.Logouts.Inc()
	}
}
