package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ShipMetricsCollector handles ship action, fuel and trade metrics
type ShipMetricsCollector struct {
	actionsTotal *prometheus.CounterVec

	fuelPurchased *prometheus.CounterVec
	fuelConsumed  *prometheus.CounterVec

	tradeUnits   *prometheus.CounterVec
	tradeCredits *prometheus.CounterVec

	extractedUnits *prometheus.CounterVec
}

// NewShipMetricsCollector creates a new ship metrics collector
func NewShipMetricsCollector() *ShipMetricsCollector {
	return &ShipMetricsCollector{
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ship_actions_total",
				Help:      "Total number of ship actions by action and outcome",
			},
			[]string{"action", "outcome"},
		),

		fuelPurchased: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fuel_purchased_units_total",
				Help:      "Total fuel units purchased by waypoint",
			},
			[]string{"waypoint"},
		),

		fuelConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fuel_consumed_units_total",
				Help:      "Total fuel units consumed by flight mode",
			},
			[]string{"flight_mode"},
		),

		tradeUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trade_units_total",
				Help:      "Units bought or sold by trade good and transaction type",
			},
			[]string{"good", "type"},
		),

		tradeCredits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trade_credits_total",
				Help:      "Credits spent (PURCHASE) or earned (SELL) on market transactions",
			},
			[]string{"type"},
		),

		extractedUnits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "extracted_units_total",
				Help:      "Units produced by extraction and siphoning",
			},
			[]string{"good"},
		),
	}
}

// Register registers all ship metrics with the Prometheus registry
func (c *ShipMetricsCollector) Register() error {
	return register(
		c.actionsTotal,
		c.fuelPurchased,
		c.fuelConsumed,
		c.tradeUnits,
		c.tradeCredits,
		c.extractedUnits,
	)
}

// RecordShipAction increments the action counter
func (c *ShipMetricsCollector) RecordShipAction(action, outcome string) {
	c.actionsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordFuelPurchase records fuel bought at a waypoint
func (c *ShipMetricsCollector) RecordFuelPurchase(waypoint string, units int) {
	c.fuelPurchased.WithLabelValues(waypoint).Add(float64(units))
}

// RecordFuelConsumption records fuel burned in flight
func (c *ShipMetricsCollector) RecordFuelConsumption(flightMode string, units int) {
	c.fuelConsumed.WithLabelValues(flightMode).Add(float64(units))
}

// RecordTrade records one market transaction
func (c *ShipMetricsCollector) RecordTrade(tradeSymbol, transactionType string, units, totalPrice int) {
	c.tradeUnits.WithLabelValues(tradeSymbol, transactionType).Add(float64(units))
	c.tradeCredits.WithLabelValues(transactionType).Add(float64(totalPrice))
}

// RecordExtraction records one yield
func (c *ShipMetricsCollector) RecordExtraction(tradeSymbol string, units int) {
	c.extractedUnits.WithLabelValues(tradeSymbol).Add(float64(units))
}
