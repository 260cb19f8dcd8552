package services

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/system"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
)

// MarketGraphLoader builds read-only market graphs from the local cache
type MarketGraphLoader struct {
	marketRepo   market.MarketRepository
	waypointRepo system.WaypointRepository
}

// NewMarketGraphLoader creates a new graph loader
func NewMarketGraphLoader(marketRepo market.MarketRepository, waypointRepo system.WaypointRepository) *MarketGraphLoader {
	return &MarketGraphLoader{marketRepo: marketRepo, waypointRepo: waypointRepo}
}

// Load snapshots the priced goods, the catalog export markets and the
// waypoint coordinates of one system
func (l *MarketGraphLoader) Load(ctx context.Context, systemSymbol string) (*trading.MarketGraph, error) {
	goods, err := l.marketRepo.ListTradeGoods(ctx, market.TradeGoodFilter{SystemSymbol: systemSymbol})
	if err != nil {
		return nil, fmt.Errorf("failed to list trade goods of %s: %w", systemSymbol, err)
	}
	waypoints, err := l.waypointRepo.ListBySystem(ctx, systemSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to list waypoints of %s: %w", systemSymbol, err)
	}
	exporters, err := l.marketRepo.ListExportMarkets(ctx, systemSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to list export markets of %s: %w", systemSymbol, err)
	}
	return trading.NewMarketGraph(goods, waypoints).WithCatalogExports(exporters), nil
}

// SystemLister returns the systems worth scanning
type SystemLister func(ctx context.Context) ([]string, error)

// OpportunityScanner turns cached market graphs into the summaries exported
// as market opportunity gauges
type OpportunityScanner struct {
	loader  *MarketGraphLoader
	systems SystemLister
}

// NewOpportunityScanner creates a scanner over the systems listed by systems
func NewOpportunityScanner(loader *MarketGraphLoader, systems SystemLister) *OpportunityScanner {
	return &OpportunityScanner{loader: loader, systems: systems}
}

// Scan summarizes the trade pairs of every listed system
func (s *OpportunityScanner) Scan(ctx context.Context) ([]metrics.SystemOpportunities, error) {
	systems, err := s.systems(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]metrics.SystemOpportunities, 0, len(systems))
	for _, symbol := range systems {
		graph, err := s.loader.Load(ctx, symbol)
		if err != nil {
			return nil, err
		}
		pairs := graph.SystemTradePairs()
		summary := metrics.SystemOpportunities{
			SystemSymbol:    symbol,
			Pairs:           len(pairs),
			ProfitablePairs: len(trading.ProfitablePairs(pairs)),
		}
		if len(pairs) > 0 {
			summary.BestEfficiency = pairs[0].Efficiency
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
