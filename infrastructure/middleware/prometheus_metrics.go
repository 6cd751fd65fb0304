// Package middleware provides cross-cutting concerns for the feud engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crowdfeud/go-feud/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of game mutations, event
// fan-out and scoring runs for the feud engine.
type PrometheusMetrics struct {
	mutationLatency *prometheus.HistogramVec
	mutationCounter *prometheus.CounterVec
	eventCounter    *prometheus.CounterVec
	stateGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all required metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		mutationLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feud_mutation_duration_seconds",
				Help:    "Execution time of game state mutations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "session"},
		),
		mutationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feud_mutations_total",
				Help: "Total number of game state mutations by outcome.",
			},
			[]string{"operation", "status", "session"},
		),
		eventCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feud_events_total",
				Help: "Total number of change events published to the bus.",
			},
			[]string{"kind", "session"},
		),
		stateGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "feud_game_state",
				Help: "Current game state values such as round and team scores.",
			},
			[]string{"metric", "session"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// mutation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.mutationLatency.WithLabelValues(operation, sessionLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	session := sessionLabel(labels)
	switch metric {
	case "feud_events_total":
		pm.eventCounter.WithLabelValues(labels["kind"], session).Add(value)
	default:
		status, ok := labels["status"]
		if !ok {
			status = "ok"
		}
		pm.mutationCounter.WithLabelValues(metric, status, session).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauges.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.stateGauges.WithLabelValues(metric, sessionLabel(labels)).Set(value)
}

func sessionLabel(labels map[string]string) string {
	if s, ok := labels["session"]; ok {
		return s
	}
	return "unknown"
}
