package stream

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	eventsTotal *prometheus.CounterVec
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom registerer.
// Pass nil to skip registration.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of processed events by outcome",
		}, []string{"outcome"}),
	}

	if registerer != nil {
		registerer.MustRegister(m.eventsTotal)
	}

	return m
}

func (m *Metrics) IncEvents(outcome Outcome) {
	m.eventsTotal.WithLabelValues(outcome.String()).Inc()
}
