package trading

import (
	"sort"

	"github.com/ropable/spacetraders-api/internal/domain/market"
)

// TradePair is one export -> import match inside a system
type TradePair struct {
	Export     *market.MarketTradeGood
	Import     *market.MarketTradeGood
	Distance   int
	Spread     int
	Efficiency float64
}

// From is the export waypoint
func (p TradePair) From() string {
	return p.Export.WaypointSymbol()
}

// To is the import waypoint
func (p TradePair) To() string {
	return p.Import.WaypointSymbol()
}

// TradeSymbol is the good moved along the pair
func (p TradePair) TradeSymbol() string {
	return p.Export.Symbol()
}

// HopProfit is the per-unit profit of buying at the export and selling at the
// import: import sell price - export purchase price.
func (p TradePair) HopProfit() int {
	return p.Import.SellPrice() - p.Export.PurchasePrice()
}

// SystemTradePairs returns every export/import match in the graph with
// efficiency = round(spread / distance, 1). Pairs at distance 0 are left out.
// Sorted by efficiency descending, then export, import and good symbol.
func (g *MarketGraph) SystemTradePairs() []TradePair {
	var pairs []TradePair
	for _, exports := range g.exports {
		for _, export := range exports {
			for _, imp := range g.Matches(export) {
				distance, ok := g.flooredDistance(export.WaypointSymbol(), imp.WaypointSymbol())
				if !ok || distance == 0 {
					continue
				}
				spread := imp.PurchasePrice() - export.SellPrice()
				pairs = append(pairs, TradePair{
					Export:     export,
					Import:     imp,
					Distance:   distance,
					Spread:     spread,
					Efficiency: roundTo(float64(spread)/float64(distance), 1),
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.Efficiency != b.Efficiency {
			return a.Efficiency > b.Efficiency
		}
		if a.From() != b.From() {
			return a.From() < b.From()
		}
		if a.To() != b.To() {
			return a.To() < b.To()
		}
		return a.TradeSymbol() < b.TradeSymbol()
	})
	return pairs
}

// ProfitablePairs keeps the pairs whose hop profit is positive
func ProfitablePairs(pairs []TradePair) []TradePair {
	var kept []TradePair
	for _, p := range pairs {
		if p.HopProfit() > 0 {
			kept = append(kept, p)
		}
	}
	return kept
}
