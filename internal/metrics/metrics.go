// Package metrics exposes per-run Prometheus counters for labelling runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/labelgen/internal/split"
)

const namespace = "labelgen"

// Recorder holds the metrics of one run on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	scenes *prometheus.CounterVec
	skips  *prometheus.CounterVec
	splits *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scenes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenes_total",
			Help:      "Scenes processed, by outcome.",
		}, []string{"status"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skips_total",
			Help:      "Skipped scenes, by reason.",
		}, []string{"reason"}),
		splits: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "split_records",
			Help:      "Records assigned to each split.",
		}, []string{"split"}),
	}
	r.registry.MustRegister(r.scenes, r.skips, r.splits)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Accepted counts one labelled scene.
func (r *Recorder) Accepted() {
	r.scenes.WithLabelValues("accepted").Inc()
}

// Skipped counts one skipped scene.
func (r *Recorder) Skipped(reason string) {
	r.scenes.WithLabelValues("skipped").Inc()
	r.skips.WithLabelValues(reason).Inc()
}

// Splits records the size of every split.
func (r *Recorder) Splits(res *split.Result) {
	for _, n := range split.Names {
		r.splits.WithLabelValues(string(n)).Set(float64(len(res.Get(n))))
	}
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
