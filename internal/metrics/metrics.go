// Package metrics counts recipe book activity with Prometheus collectors.
// The CLI has no listener; counters are dumped to a node-exporter textfile
// when the process exits.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns a private registry so tests and multiple books never
// collide on the global one.
type Recorder struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	persistFailure prometheus.Counter
	recipes        prometheus.Gauge
}

// New registers the recipe book collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebook",
			Name:      "operations_total",
			Help:      "Recipe book operations by name and outcome.",
		}, []string{"op", "outcome"}),
		persistFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recipebook",
			Name:      "persist_failures_total",
			Help:      "Writes of the recipe collection that did not reach the store.",
		}),
		recipes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "recipebook",
			Name:      "recipes",
			Help:      "Recipes currently in the collection.",
		}),
	}
	r.registry.MustRegister(r.operations, r.persistFailure, r.recipes)
	return r
}

// Operation counts one completed operation. err == nil counts as "ok".
func (r *Recorder) Operation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.operations.WithLabelValues(op, outcome).Inc()
}

// PersistFailed counts a failed collection write.
func (r *Recorder) PersistFailed() { r.persistFailure.Inc() }

// Recipes records the collection size.
func (r *Recorder) Recipes(n int) { r.recipes.Set(float64(n)) }

// WriteTextfile writes every collector in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
