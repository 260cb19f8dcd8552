package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "spacetraders"
	// Subsystem for daemon metrics
	subsystem = "daemon"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalShipCollector is the singleton ship action collector.
	// Set by SetGlobalShipCollector() when metrics are enabled
	globalShipCollector ShipMetricsRecorder

	// globalBehaviorCollector is the singleton behavior driver collector.
	// Set by SetGlobalBehaviorCollector() when metrics are enabled
	globalBehaviorCollector BehaviorMetricsRecorder
)

// ShipMetricsRecorder defines the interface for recording ship action metrics
// This interface is used by application code to record metrics
type ShipMetricsRecorder interface {
	RecordShipAction(action, outcome string)
	RecordFuelPurchase(waypoint string, units int)
	RecordFuelConsumption(flightMode string, units int)
	RecordTrade(tradeSymbol, transactionType string, units, totalPrice int)
	RecordExtraction(tradeSymbol string, units int)
}

// BehaviorMetricsRecorder defines the interface for recording behavior driver metrics
type BehaviorMetricsRecorder interface {
	RecordCycle(action, result string, duration float64)
	RecordContinuationScheduled(action string, delaySeconds float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalShipCollector sets the global ship metrics collector
func SetGlobalShipCollector(collector ShipMetricsRecorder) {
	globalShipCollector = collector
}

// SetGlobalBehaviorCollector sets the global behavior metrics collector
func SetGlobalBehaviorCollector(collector BehaviorMetricsRecorder) {
	globalBehaviorCollector = collector
}

// RecordShipAction records the outcome of one ship action globally
func RecordShipAction(action, outcome string) {
	if globalShipCollector != nil {
		globalShipCollector.RecordShipAction(action, outcome)
	}
}

// RecordFuelPurchase records a fuel purchase event globally
func RecordFuelPurchase(waypoint string, units int) {
	if globalShipCollector != nil {
		globalShipCollector.RecordFuelPurchase(waypoint, units)
	}
}

// RecordFuelConsumption records fuel burned by a navigation globally
func RecordFuelConsumption(flightMode string, units int) {
	if globalShipCollector != nil {
		globalShipCollector.RecordFuelConsumption(flightMode, units)
	}
}

// RecordTrade records a market transaction globally
func RecordTrade(tradeSymbol, transactionType string, units, totalPrice int) {
	if globalShipCollector != nil {
		globalShipCollector.RecordTrade(tradeSymbol, transactionType, units, totalPrice)
	}
}

// RecordExtraction records an extraction or siphon yield globally
func RecordExtraction(tradeSymbol string, units int) {
	if globalShipCollector != nil {
		globalShipCollector.RecordExtraction(tradeSymbol, units)
	}
}

// RecordCycle records one behavior step globally
func RecordCycle(action, result string, duration float64) {
	if globalBehaviorCollector != nil {
		globalBehaviorCollector.RecordCycle(action, result, duration)
	}
}

// RecordContinuationScheduled records a continuation enqueue globally
func RecordContinuationScheduled(action string, delaySeconds float64) {
	if globalBehaviorCollector != nil {
		globalBehaviorCollector.RecordContinuationScheduled(action, delaySeconds)
	}
}

func register(collectors ...prometheus.Collector) error {
	if Registry == nil {
		return nil // Metrics not enabled
	}
	for _, c := range collectors {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}
