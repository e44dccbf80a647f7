// Package metrics exposes prediction metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "raildelay"

// Error kinds used as the "kind" label of PredictionErrorsTotal.
const (
	ErrorKindValidation   = "validation"
	ErrorKindClassifier   = "classifier"
	ErrorKindCircuitOpen  = "circuit_open"
	ErrorKindCanceled     = "canceled"
	ErrorKindUnclassified = "other"
)

// Collector holds the prediction metrics.
type Collector struct {
	registry *prometheus.Registry

	PredictionsTotal      *prometheus.CounterVec
	PredictionErrorsTotal *prometheus.CounterVec
	ExpectedDelayMinutes  prometheus.Histogram
	ClassifierDuration    prometheus.Histogram
}

// NewCollector creates a collector on its own registry, so several
// collectors can coexist in one process.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		PredictionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "predictions_total",
				Help:      "Total number of delay predictions by category",
			},
			[]string{"category"},
		),

		PredictionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "prediction_errors_total",
				Help:      "Total number of failed predictions by error kind",
			},
			[]string{"kind"},
		),

		ExpectedDelayMinutes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "expected_delay_minutes",
				Help:      "Distribution of predicted expected delay in minutes",
				Buckets:   []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 5, 6, 7, 8},
			},
		),

		ClassifierDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "classifier_duration_seconds",
				Help:      "Duration of classifier calls in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
		),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordPrediction counts a successful prediction.
func (c *Collector) RecordPrediction(category string, expectedDelay float64) {
	c.PredictionsTotal.WithLabelValues(category).Inc()
	c.ExpectedDelayMinutes.Observe(expectedDelay)
}

// RecordError counts a failed prediction.
func (c *Collector) RecordError(kind string) {
	c.PredictionErrorsTotal.WithLabelValues(kind).Inc()
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer starts a timer that reports to histogram.
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
