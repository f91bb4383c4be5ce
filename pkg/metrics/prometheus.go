// Package metrics provides Prometheus stage counters for the correlation analysis.
//
// Every rejection gate in the event, jet and pair selection chain increments a
// counter here, so a run can be audited without inspecting histogram contents.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus metrics for one analysis process.
type Manager struct {
	namespace string
	subsystem string
	enabled   bool
	registry  prometheus.Registerer

	// Selection chain counters. The stage label names the gate that was
	// reached: seen, selected, occupancy, vertex, centrality, ...
	eventStages *prometheus.CounterVec
	jetStages   *prometheus.CounterVec
	dijetStages *prometheus.CounterVec
	pairStages  *prometheus.CounterVec

	// Mixing counters.
	mixedEvents  prometheus.Counter
	mixedAborts  prometheus.Counter
	poolEvents   prometheus.Gauge
	poolEvicted  prometheus.Counter
	tuplesTotal  *prometheus.CounterVec
	ptHatRejects *prometheus.CounterVec
}

// Global metrics manager instance on a private registry, so the default Go
// collectors never collide with ours.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

var globalManager *Manager //nolint:gochecknoglobals // singleton manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// Registry returns the registry holding the global metrics, for HTTP exposure.
func Registry() *prometheus.Registry { return customRegistry }

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "jetcorr",
		subsystem: "analysis",
		enabled:   true,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventStages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_total",
		Help:      "Events reaching each selection stage, by processing path",
	}, []string{"path", "stage"})

	m.jetStages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "jets_total",
		Help:      "Jets reaching each acceptance stage, by processing path",
	}, []string{"path", "stage"})

	m.dijetStages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dijets_total",
		Help:      "Leading/subleading jet pairs reaching each gate, by processing path",
	}, []string{"path", "stage"})

	m.pairStages = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "jet_hadron_pairs_total",
		Help:      "Jet-hadron pairs reaching each gate, by processing path",
	}, []string{"path", "stage"})

	m.mixedEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mixed_event_pairs_total",
		Help:      "Event pairs drawn from the mixing pools",
	})

	m.mixedAborts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mixing_aborts_total",
		Help:      "Mixing rounds terminated early by the abort policy",
	})

	m.poolEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_buffered_events",
		Help:      "Events currently buffered across all mixing pools",
	})

	m.poolEvicted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_evictions_total",
		Help:      "Events evicted from mixing pools (FIFO depth cap)",
	})

	m.tuplesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "correlation_tuples_total",
		Help:      "Correlation tuples emitted to the sink, by processing path",
	}, []string{"path"})

	m.ptHatRejects = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pthat_rejections_total",
		Help:      "Jets rejected by the pT-hat outlier filter, by simulation level",
	}, []string{"level"})
}

// Package-level helpers against the global manager.

// RecordEventStage counts an event reaching a selection stage.
func RecordEventStage(path, stage string) {
	if globalManager.enabled {
		globalManager.eventStages.WithLabelValues(path, stage).Inc()
	}
}

// RecordJetStage counts a jet reaching an acceptance stage.
func RecordJetStage(path, stage string) {
	if globalManager.enabled {
		globalManager.jetStages.WithLabelValues(path, stage).Inc()
	}
}

// RecordDijetStage counts a leading/subleading pair reaching a gate.
func RecordDijetStage(path, stage string) {
	if globalManager.enabled {
		globalManager.dijetStages.WithLabelValues(path, stage).Inc()
	}
}

// RecordPairStage counts a jet-hadron pair reaching a gate.
func RecordPairStage(path, stage string) {
	if globalManager.enabled {
		globalManager.pairStages.WithLabelValues(path, stage).Inc()
	}
}

// RecordMixedEvent counts one event pair drawn from a mixing pool.
func RecordMixedEvent() {
	if globalManager.enabled {
		globalManager.mixedEvents.Inc()
	}
}

// RecordMixingAbort counts a mixing round cut short by the abort policy.
func RecordMixingAbort() {
	if globalManager.enabled {
		globalManager.mixedAborts.Inc()
	}
}

// UpdatePoolSize sets the buffered-event gauge.
func UpdatePoolSize(n int) {
	if globalManager.enabled {
		globalManager.poolEvents.Set(float64(n))
	}
}

// RecordPoolEviction counts a FIFO eviction from a mixing pool.
func RecordPoolEviction() {
	if globalManager.enabled {
		globalManager.poolEvicted.Inc()
	}
}

// RecordTuple counts an emitted correlation tuple.
func RecordTuple(path string) {
	if globalManager.enabled {
		globalManager.tuplesTotal.WithLabelValues(path).Inc()
	}
}

// RecordPtHatRejection counts a jet dropped by the pT-hat filter.
func RecordPtHatRejection(level string) {
	if globalManager.enabled {
		globalManager.ptHatRejects.WithLabelValues(level).Inc()
	}
}
