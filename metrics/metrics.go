// Package metrics exposes Prometheus collectors for layer compilation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records compilation metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	compilations  *prometheus.CounterVec
	layersApplied prometheus.Counter
	layersSkipped prometheus.Counter
	conflicts     prometheus.Gauge
	duration      prometheus.Histogram
	historySize   prometheus.Gauge
}

// NewCollector creates the collectors and registers them with reg. If reg is
// nil a private registry is used.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "layerstack"
	}
	factory := promauto.With(reg)

	return &Collector{
		compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Total number of compilations by result",
			},
			[]string{"result"},
		),
		layersApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layers_applied_total",
			Help:      "Total number of layers applied across compilations",
		}),
		layersSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layers_skipped_total",
			Help:      "Total number of layers skipped because their patch failed to apply",
		}),
		conflicts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflicts",
			Help:      "Number of conflicting paths in the latest compilation",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Compilation latency",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		historySize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_entries",
			Help:      "Number of entries in the undo history",
		}),
	}
}

// RecordCompile records a successful compilation.
func (c *Collector) RecordCompile(applied, skipped, conflicts int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.compilations.WithLabelValues("ok").Inc()
	c.layersApplied.Add(float64(applied))
	c.layersSkipped.Add(float64(skipped))
	c.conflicts.Set(float64(conflicts))
	c.duration.Observe(elapsed.Seconds())
}

// RecordRejected records a compilation refused because of a malformed base
// document.
func (c *Collector) RecordRejected() {
	if c == nil {
		return
	}
	c.compilations.WithLabelValues("rejected").Inc()
}

// SetHistorySize records the current undo history length.
func (c *Collector) SetHistorySize(n int) {
	if c == nil {
		return
	}
	c.historySize.Set(float64(n))
}
