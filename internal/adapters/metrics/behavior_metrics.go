package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BehaviorMetricsCollector handles behavior driver metrics
type BehaviorMetricsCollector struct {
	cyclesTotal          *prometheus.CounterVec
	cycleDuration        *prometheus.HistogramVec
	continuationsTotal   *prometheus.CounterVec
	continuationDelay    *prometheus.HistogramVec
	pendingContinuations prometheus.GaugeFunc
}

// NewBehaviorMetricsCollector creates a new behavior metrics collector.
// pending reports the number of armed continuations; it may be nil.
func NewBehaviorMetricsCollector(pending func() int) *BehaviorMetricsCollector {
	if pending == nil {
		pending = func() int { return 0 }
	}
	return &BehaviorMetricsCollector{
		cyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "behavior_cycles_total",
				Help:      "Behavior steps run by action and result",
			},
			[]string{"action", "result"},
		),

		cycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "behavior_cycle_duration_seconds",
				Help:      "Wall time of one behavior step",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"action"},
		),

		continuationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "continuations_scheduled_total",
				Help:      "Continuations enqueued by action",
			},
			[]string{"action"},
		),

		continuationDelay: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "continuation_delay_seconds",
				Help:      "Delay between enqueue and due time of a continuation",
				Buckets:   []float64{0, 1, 10, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"action"},
		),

		pendingContinuations: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "continuations_pending",
				Help:      "Continuations currently armed in the scheduler",
			},
			func() float64 { return float64(pending()) },
		),
	}
}

// Register registers all behavior metrics with the Prometheus registry
func (c *BehaviorMetricsCollector) Register() error {
	return register(
		c.cyclesTotal,
		c.cycleDuration,
		c.continuationsTotal,
		c.continuationDelay,
		c.pendingContinuations,
	)
}

// RecordCycle records a finished behavior step
func (c *BehaviorMetricsCollector) RecordCycle(action, result string, duration float64) {
	c.cyclesTotal.WithLabelValues(action, result).Inc()
	c.cycleDuration.WithLabelValues(action).Observe(duration)
}

// RecordContinuationScheduled records an enqueue
func (c *BehaviorMetricsCollector) RecordContinuationScheduled(action string, delaySeconds float64) {
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	c.continuationsTotal.WithLabelValues(action).Inc()
	c.continuationDelay.WithLabelValues(action).Observe(delaySeconds)
}
