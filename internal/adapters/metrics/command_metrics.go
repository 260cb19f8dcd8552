package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Command status labels
const (
	statusOK       = "ok"
	statusDeclined = "declined" // handled, but the ship action did not go through
	statusError    = "error"
)

// CommandMetricsCollector records how mediator requests end and how long they take.
// Behavior steps block on the rate limiter, so durations run into minutes.
type CommandMetricsCollector struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Mediator request duration by request type and status",
				Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 15, 30, 60, 120},
			},
			[]string{"request", "status"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Mediator requests by request type and status (ok, declined, error)",
			},
			[]string{"request", "status"},
		),
	}
}

// Register registers all command metrics with the Prometheus registry
func (c *CommandMetricsCollector) Register() error {
	return register(c.duration, c.total)
}

// RecordRequest records one handled request
func (c *CommandMetricsCollector) RecordRequest(requestName, status string, seconds float64) {
	c.duration.WithLabelValues(requestName, status).Observe(seconds)
	c.total.WithLabelValues(requestName, status).Inc()
}
