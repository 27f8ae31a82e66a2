package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for RepairsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeIntegrity = "integrity_violation"
	OutcomeError     = "error"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	RepairsTotal         *prometheus.CounterVec
	TransfersSynthesized prometheus.Counter
	TransfersRetracted   prometheus.Counter
	ScheduleConflicts    prometheus.Counter
	UnresolvedGaps       prometheus.Counter
	RepairDuration       prometheus.Histogram
	ImportsTotal         *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry, so tests and
// multiple servers in one process do not collide.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RepairsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repairs_total",
			Help:      "The total number of itinerary repairs by outcome",
		}, []string{"outcome"}),
		TransfersSynthesized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_synthesized_total",
			Help:      "The total number of transfers inserted to bridge a gap",
		}),
		TransfersRetracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_retracted_total",
			Help:      "The total number of stale synthesized transfers removed",
		}),
		ScheduleConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_conflicts_total",
			Help:      "The total number of overlapping imported segments reported",
		}),
		UnresolvedGaps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_gaps_total",
			Help:      "The total number of gaps flagged for manual review",
		}),
		RepairDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repair_duration_seconds",
			Help:      "Time taken by the continuity engine per repair",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "The total number of document imports by result",
		}, []string{"result"}),
	}
}

// ObserveRepair records the outcome and counters of a single repair.
func (m *Metrics) ObserveRepair(outcome string, elapsed time.Duration, synthesized, retracted, conflicts, unresolved int) {
	m.RepairsTotal.WithLabelValues(outcome).Inc()
	m.RepairDuration.Observe(elapsed.Seconds())
	m.TransfersSynthesized.Add(float64(synthesized))
	m.TransfersRetracted.Add(float64(retracted))
	m.ScheduleConflicts.Add(float64(conflicts))
	m.UnresolvedGaps.Add(float64(unresolved))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
