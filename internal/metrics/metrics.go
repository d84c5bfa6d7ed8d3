// Package metrics records build statistics in a dedicated Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"PopulationSnapshot/internal/ports"
)

const namespace = "snapshot"

// Metrics holds all Prometheus collectors for one build run.
type Metrics struct {
	registry     *prometheus.Registry
	fetchSeconds *prometheus.GaugeVec
	rowsSkipped  *prometheus.CounterVec
	countries    prometheus.Gauge
	success      prometheus.Gauge
	lastBuild    prometheus.Gauge
}

var _ ports.BuildRecorder = (*Metrics)(nil)

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetchSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_fetch_seconds",
			Help:      "Time spent reading each upstream source during the last build",
		}, []string{"source"}),
		rowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Source rows dropped as unusable, by component and reason",
		}, []string{"component", "reason"}),
		countries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "countries_total",
			Help:      "Countries written to the last snapshot",
		}),
		success: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_success",
			Help:      "1 if the last build wrote a snapshot, 0 otherwise",
		}),
		lastBuild: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time the last build finished",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RowSkipped counts a dropped row.
func (m *Metrics) RowSkipped(component, reason string) {
	m.rowsSkipped.WithLabelValues(component, reason).Inc()
}

// ObserveFetch records how long a source read took. Paged sources accumulate.
func (m *Metrics) ObserveFetch(source string, elapsed time.Duration) {
	m.fetchSeconds.WithLabelValues(source).Add(elapsed.Seconds())
}

// ObserveSnapshot records the number of countries in the snapshot.
func (m *Metrics) ObserveSnapshot(countries int) {
	m.countries.Set(float64(countries))
}

// ObserveResult records the outcome of the run.
func (m *Metrics) ObserveResult(success bool, finishedAt time.Time) {
	if success {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
	m.lastBuild.Set(float64(finishedAt.Unix()))
}

// WriteTextfile writes the registry in the node_exporter textfile collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
