package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SystemOpportunities summarises the trade pairs of one system
type SystemOpportunities struct {
	SystemSymbol    string
	Pairs           int
	ProfitablePairs int
	BestEfficiency  float64
}

// OpportunitySource computes the current opportunities for every cached system
type OpportunitySource func(ctx context.Context) ([]SystemOpportunities, error)

// MarketMetricsCollector handles market sync and trade opportunity metrics
type MarketMetricsCollector struct {
	source OpportunitySource

	marketSyncsTotal   *prometheus.CounterVec
	marketSyncDuration prometheus.Histogram
	tradeGoodsUpserted prometheus.Counter

	tradePairs      *prometheus.GaugeVec
	profitablePairs *prometheus.GaugeVec
	bestEfficiency  *prometheus.GaugeVec

	// Lifecycle
	ctx          context.Context
	cancelFunc   context.CancelFunc
	wg           sync.WaitGroup
	pollInterval time.Duration
}

// NewMarketMetricsCollector creates a new market metrics collector.
// source may be nil, in which case only sync metrics are recorded.
func NewMarketMetricsCollector(source OpportunitySource, pollInterval time.Duration) *MarketMetricsCollector {
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &MarketMetricsCollector{
		source:       source,
		pollInterval: pollInterval,

		marketSyncsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "market_syncs_total",
				Help:      "Market snapshots fetched and stored, by status",
			},
			[]string{"status"},
		),
		marketSyncDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "market_sync_duration_seconds",
				Help:      "Time to fetch and store one market snapshot",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
		tradeGoodsUpserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "market_trade_goods_upserted_total",
				Help:      "Market trade good rows written by market syncs",
			},
		),
		tradePairs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trade_pairs",
				Help:      "Export to import matches per system",
			},
			[]string{"system"},
		),
		profitablePairs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trade_pairs_profitable",
				Help:      "Trade pairs with positive hop profit per system",
			},
			[]string{"system"},
		),
		bestEfficiency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trade_pair_best_efficiency",
				Help:      "Highest spread per distance unit among a system's trade pairs",
			},
			[]string{"system"},
		),
	}
}

// Register registers all market metrics with the Prometheus registry
func (c *MarketMetricsCollector) Register() error {
	return register(
		c.marketSyncsTotal,
		c.marketSyncDuration,
		c.tradeGoodsUpserted,
		c.tradePairs,
		c.profitablePairs,
		c.bestEfficiency,
	)
}

// Start begins polling the opportunity source in the background
func (c *MarketMetricsCollector) Start(ctx context.Context) {
	if c.source == nil {
		return
	}
	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.poll()
}

// Stop stops the polling loop and waits for it to exit
func (c *MarketMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
}

func (c *MarketMetricsCollector) poll() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.updateOpportunities()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.updateOpportunities()
		}
	}
}

func (c *MarketMetricsCollector) updateOpportunities() {
	systems, err := c.source(c.ctx)
	if err != nil {
		log.Printf("Warning: failed to compute trade opportunities: %v", err)
		return
	}
	for _, s := range systems {
		c.tradePairs.WithLabelValues(s.SystemSymbol).Set(float64(s.Pairs))
		c.profitablePairs.WithLabelValues(s.SystemSymbol).Set(float64(s.ProfitablePairs))
		c.bestEfficiency.WithLabelValues(s.SystemSymbol).Set(s.BestEfficiency)
	}
}

// RecordMarketSync records one market snapshot sync
func (c *MarketMetricsCollector) RecordMarketSync(duration time.Duration, goods int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.marketSyncsTotal.WithLabelValues(status).Inc()
	c.marketSyncDuration.Observe(duration.Seconds())
	if err == nil {
		c.tradeGoodsUpserted.Add(float64(goods))
	}
}
