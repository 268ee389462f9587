package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal     *prometheus.CounterVec
	alertsTotal     *prometheus.CounterVec
	deliveriesTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	confidence      *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimewatch_cycles_total",
				Help: "Total number of polling cycles by outcome",
			},
			[]string{"status"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimewatch_alerts_total",
				Help: "Total number of alerts emitted by kind",
			},
			[]string{"kind"},
		),
		deliveriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimewatch_deliveries_total",
				Help: "Total number of notification deliveries by transport and outcome",
			},
			[]string{"transport", "status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimewatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regimewatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "regimewatch_regime_confidence",
				Help: "Confidence of the most recent classification",
			},
			[]string{"symbol", "regime"},
		),
	}
}

// RecordCycle records one completed polling cycle.
func (r *Recorder) RecordCycle(status string) {
	r.cyclesTotal.WithLabelValues(status).Inc()
}

// RecordAlert records an emitted alert.
func (r *Recorder) RecordAlert(kind string) {
	r.alertsTotal.WithLabelValues(kind).Inc()
}

// RecordDelivery records a notification delivery attempt outcome.
func (r *Recorder) RecordDelivery(transport, status string) {
	r.deliveriesTotal.WithLabelValues(transport, status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordConfidence records the confidence of the latest classification.
func (r *Recorder) RecordConfidence(symbol, regime string, confidence float64) {
	r.confidence.WithLabelValues(symbol, regime).Set(confidence)
}
