package runner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for agent dispatch.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates dispatch metrics and registers them on reg. Pass a
// private registry in tests to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "researchd_agent_runs_total",
			Help: "Total agent dispatches by agent name and outcome.",
		}, []string{"agent", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "researchd_agent_run_duration_seconds",
			Help:    "Agent dispatch duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"agent"}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration)
	}
	return m
}

// observe records one dispatch outcome. Nil-safe so the runner works
// without metrics wired.
func (m *Metrics) observe(agent string, status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(agent, string(status)).Inc()
	m.duration.WithLabelValues(agent).Observe(elapsed.Seconds())
}
