package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// carcass-observation pipeline.
type Metrics struct {
	ObservationsFetched prometheus.Counter
	LexicalDropped      *prometheus.CounterVec // labels: reason={no_inclusion,exclusion_hit,before_cutoff}
	CoordinateDropped   *prometheus.CounterVec // labels: layer
	OutsideBoundary     *prometheus.CounterVec // labels: layer
	LayerRecords        *prometheus.GaugeVec   // labels: layer — final record count per exported layer

	Runs            *prometheus.CounterVec // labels: outcome={success,error}
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge
	LastRunUnixTime prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObservationsFetched,
		m.LexicalDropped,
		m.CoordinateDropped,
		m.OutsideBoundary,
		m.LayerRecords,
		m.Runs,
		m.RunDuration,
		m.PipelineRunning,
		m.LastRunUnixTime,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carrionwatch",
			Name:      "observations_fetched_total",
			Help:      "Total observation records returned by the source API.",
		}),
		LexicalDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carrionwatch",
			Name:      "lexical_dropped_total",
			Help:      "Records dropped by the keyword filter, by reason.",
		}, []string{"reason"}),
		CoordinateDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carrionwatch",
			Name:      "coordinate_dropped_total",
			Help:      "Records dropped for missing or invalid coordinates, by layer.",
		}, []string{"layer"}),
		OutsideBoundary: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carrionwatch",
			Name:      "outside_boundary_total",
			Help:      "Points dropped by the country containment filter, by layer.",
		}, []string{"layer"}),
		LayerRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "carrionwatch",
			Name:      "layer_records",
			Help:      "Final record count per exported layer from the last run.",
		}, []string{"layer"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carrionwatch",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carrionwatch",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-filter-clip-export run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carrionwatch",
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		LastRunUnixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "carrionwatch",
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}
