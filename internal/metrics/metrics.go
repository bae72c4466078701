// Package metrics exports resolver telemetry to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolver implements lvm.Observer
type Resolver struct {
	resolutions *prometheus.CounterVec
	steps       prometheus.Histogram
	slaves      prometheus.Histogram
	runaway     prometheus.Counter
}

// NewResolver registers the resolver metrics with reg
func NewResolver(reg prometheus.Registerer) *Resolver {
	f := promauto.With(reg)
	return &Resolver{
		resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pal_lvm_resolutions_total",
				Help: "Device-mapper node resolutions by outcome",
			},
			[]string{"outcome"},
		),
		steps: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pal_lvm_traversal_steps",
			Help:    "Slave directories visited per slave resolution",
			Buckets: []float64{1, 2, 4, 8, 16, 64, 256, 1024},
		}),
		slaves: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pal_lvm_slaves",
			Help:    "Physical devices found per slave resolution",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		runaway: f.NewCounter(prometheus.CounterOpts{
			Name: "pal_lvm_runaway_traversals_total",
			Help: "Slave resolutions aborted at the step limit",
		}),
	}
}

func (m *Resolver) ObserveResolution(outcome string) {
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Resolver) ObserveTraversal(steps, slaves int, runaway bool) {
	m.steps.Observe(float64(steps))
	m.slaves.Observe(float64(slaves))
	if runaway {
		m.runaway.Inc()
	}
}
