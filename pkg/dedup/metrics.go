package dedup

import "github.com/prometheus/client_golang/prometheus"

// Metrics provides Prometheus metrics for stream runs.
type Metrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom registerer.
// Pass nil to skip registration.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of stream runs by status",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of stream runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if registerer != nil {
		registerer.MustRegister(m.runsTotal)
		registerer.MustRegister(m.runDuration)
	}

	return m
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(status string, seconds float64) {
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(seconds)
}
