package store

import "github.com/prometheus/client_golang/prometheus"

// Metrics provides Prometheus metrics for the store.
type Metrics struct {
	admissionsTotal *prometheus.CounterVec
	duplicatesTotal *prometheus.CounterVec
	flushesTotal    *prometheus.CounterVec

	lastSeenSize *prometheus.GaugeVec
	historySize  *prometheus.GaugeVec

	indexInsertionsTotal *prometheus.GaugeVec
	indexHitsTotal       *prometheus.GaugeVec
	indexMissesTotal     *prometheus.GaugeVec
	indexEvictionsTotal  *prometheus.GaugeVec
}

// NewMetricsWithRegisterer creates a new Metrics instance with a custom registerer.
// Pass nil to skip registration.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		admissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Total number of admitted messages",
		}, []string{}),
		duplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Total number of messages suppressed inside the expiration window",
		}, []string{}),
		flushesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flushes_total",
			Help:      "Total number of full store resets by reason",
		}, []string{"reason"}),
		lastSeenSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_seen_size",
			Help:      "Number of distinct messages tracked",
		}, []string{}),
		historySize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_size",
			Help:      "Number of admitted records in history",
		}, []string{}),
		indexInsertionsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_insertions_total",
			Help:      "Total number of last-seen index insertions",
		}, []string{"store"}),
		indexHitsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_hits_total",
			Help:      "Total number of last-seen index hits",
		}, []string{"store"}),
		indexMissesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_misses_total",
			Help:      "Total number of last-seen index misses",
		}, []string{"store"}),
		indexEvictionsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_evictions_total",
			Help:      "Total number of last-seen index evictions",
		}, []string{"store"}),
	}

	if registerer != nil {
		registerer.MustRegister(m.admissionsTotal)
		registerer.MustRegister(m.duplicatesTotal)
		registerer.MustRegister(m.flushesTotal)
		registerer.MustRegister(m.lastSeenSize)
		registerer.MustRegister(m.historySize)
		registerer.MustRegister(m.indexInsertionsTotal)
		registerer.MustRegister(m.indexHitsTotal)
		registerer.MustRegister(m.indexMissesTotal)
		registerer.MustRegister(m.indexEvictionsTotal)
	}

	return m
}

func (m *Metrics) IncAdmissions() {
	m.admissionsTotal.WithLabelValues().Inc()
}

func (m *Metrics) IncDuplicates() {
	m.duplicatesTotal.WithLabelValues().Inc()
}

func (m *Metrics) IncFlushes(reason string) {
	m.flushesTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetSizes(lastSeen, history int) {
	m.lastSeenSize.WithLabelValues().Set(float64(lastSeen))
	m.historySize.WithLabelValues().Set(float64(history))
}

// SetIndexInsertions sets the index insertions metric.
func (m *Metrics) SetIndexInsertions(count uint64, store string) {
	m.indexInsertionsTotal.WithLabelValues(store).Set(float64(count))
}

// SetIndexHits sets the index hits metric.
func (m *Metrics) SetIndexHits(count uint64, store string) {
	m.indexHitsTotal.WithLabelValues(store).Set(float64(count))
}

// SetIndexMisses sets the index misses metric.
func (m *Metrics) SetIndexMisses(count uint64, store string) {
	m.indexMissesTotal.WithLabelValues(store).Set(float64(count))
}

// SetIndexEvictions sets the index evictions metric.
func (m *Metrics) SetIndexEvictions(count uint64, store string) {
	m.indexEvictionsTotal.WithLabelValues(store).Set(float64(count))
}
