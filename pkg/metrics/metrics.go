package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// Report Metrics
	ReportsTotal        *prometheus.CounterVec
	ReportBuildDuration prometheus.Histogram

	// Selection Metrics
	RecommendationsTotal *prometheus.CounterVec
	DeficienciesTotal    *prometheus.CounterVec

	// Input Metrics
	InvalidInputsTotal *prometheus.CounterVec

	// Batch Metrics
	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram
	ActiveBuilds  prometheus.Gauge
}

// NewCollector creates a new metrics collector registered with reg. A nil
// registerer uses the default Prometheus registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		ReportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_total",
				Help:      "Total number of recommendation reports by crop status and outcome",
			},
			[]string{"crop_status", "outcome"}, // crop_status: "known", "unknown"
		),

		ReportBuildDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_build_duration_seconds",
				Help:      "Duration of a single report build in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		RecommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Total number of recommended products by selector stage and product",
			},
			[]string{"stage", "product"},
		),

		DeficienciesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deficiencies_total",
				Help:      "Total number of computed deficiencies by nutrient and severity",
			},
			[]string{"nutrient", "severity"},
		),

		InvalidInputsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_inputs_total",
				Help:      "Total number of rejected soil samples by offending field",
			},
			[]string{"field"},
		),

		BatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_size",
				Help:      "Number of samples per batch",
				Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
			},
		),

		BatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of batch runs in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
		),

		ActiveBuilds: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_builds",
				Help:      "Number of report builds in progress",
			},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(histogram prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: histogram,
	}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	duration := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(duration.Seconds())
	}
	return duration
}

// RecordReport increments the report counter
func (c *Collector) RecordReport(knownCrop bool, outcome string) {
	status := "known"
	if !knownCrop {
		status = "unknown"
	}
	c.ReportsTotal.WithLabelValues(status, outcome).Inc()
}

// RecordRecommendation increments the recommendation counter
func (c *Collector) RecordRecommendation(stage, product string) {
	c.RecommendationsTotal.WithLabelValues(stage, product).Inc()
}

// RecordDeficiency increments the deficiency counter
func (c *Collector) RecordDeficiency(nutrient, severity string) {
	c.DeficienciesTotal.WithLabelValues(nutrient, severity).Inc()
}

// RecordInvalidInput increments the invalid input counter
func (c *Collector) RecordInvalidInput(field string) {
	c.InvalidInputsTotal.WithLabelValues(field).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
