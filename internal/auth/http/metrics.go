package http

import "github.com/prometheus/client_golang/prometheus"

// Login outcomes recorded by LoginMetrics.
const (
	loginSuccess = "success"
	loginFailure = "invalid_credentials"
	loginError   = "error"
)

// LoginMetrics counts login attempts by outcome. Usernames are never labels.
type LoginMetrics struct {
	Attempts *prometheus.CounterVec
}

func NewLoginMetrics(namespace string, reg prometheus.Registerer) *LoginMetrics {
	m := &LoginMetrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.Attempts)

	// Pre-create series so dashboards see zeros instead of gaps.
	for _, o := range []string{loginSuccess, loginFailure, loginError} {
		m.Attempts.WithLabelValues(o)
	}
	return m
}

func (m *LoginMetrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(outcome).Inc()
}
