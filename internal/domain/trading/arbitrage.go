package trading

import (
	"sort"

	"github.com/ropable/spacetraders-api/internal/domain/market"
)

// ArbitrageDestination is one import market matched to an export
type ArbitrageDestination struct {
	WaypointSymbol string  `json:"waypoint" yaml:"waypoint"`
	Distance       int     `json:"distance" yaml:"distance"`
	Spread         int     `json:"spread" yaml:"spread"`
	Ratio          float64 `json:"ratio" yaml:"ratio"`
}

// Arbitrage ranks the import destinations of one EXPORT good.
//
//	distance = floor(euclidean(A, B))
//	spread   = import purchase price at B - export sell price at A
//	ratio    = round(spread / distance, 2)
//
// Destinations at distance 0 have no ratio and are left out. The result is
// sorted by ratio descending, then by destination symbol.
func (g *MarketGraph) Arbitrage(export *market.MarketTradeGood) []ArbitrageDestination {
	matches := g.Matches(export)
	destinations := make([]ArbitrageDestination, 0, len(matches))

	for _, imp := range matches {
		distance, ok := g.flooredDistance(export.WaypointSymbol(), imp.WaypointSymbol())
		if !ok || distance == 0 {
			continue
		}
		spread := imp.PurchasePrice() - export.SellPrice()
		destinations = append(destinations, ArbitrageDestination{
			WaypointSymbol: imp.WaypointSymbol(),
			Distance:       distance,
			Spread:         spread,
			Ratio:          roundTo(float64(spread)/float64(distance), 2),
		})
	}

	sort.Slice(destinations, func(i, j int) bool {
		if destinations[i].Ratio != destinations[j].Ratio {
			return destinations[i].Ratio > destinations[j].Ratio
		}
		return destinations[i].WaypointSymbol < destinations[j].WaypointSymbol
	})
	return destinations
}

// BestExport is the most attractive export of a market
type BestExport struct {
	TradeSymbol    string  `json:"tradeSymbol" yaml:"tradeSymbol"`
	Destination    string  `json:"destination" yaml:"destination"`
	Ratio          float64 `json:"ratio" yaml:"ratio"`
	Distance       int     `json:"distance" yaml:"distance"`
	Spread         int     `json:"spread" yaml:"spread"`
	WaypointSymbol string  `json:"waypoint" yaml:"waypoint"`
}

// BestExport picks, among the exports of a market, the one whose top
// arbitrage ratio is highest. ok is false when the market exports nothing or
// no export has a valid destination. Ties break on trade symbol.
func (g *MarketGraph) BestExport(waypointSymbol string) (best BestExport, ok bool) {
	for _, export := range g.exports[waypointSymbol] {
		destinations := g.Arbitrage(export)
		if len(destinations) == 0 {
			continue
		}
		top := destinations[0]
		better := !ok ||
			top.Ratio > best.Ratio ||
			(top.Ratio == best.Ratio && export.Symbol() < best.TradeSymbol)
		if better {
			best = BestExport{
				TradeSymbol:    export.Symbol(),
				Destination:    top.WaypointSymbol,
				Ratio:          top.Ratio,
				Distance:       top.Distance,
				Spread:         top.Spread,
				WaypointSymbol: waypointSymbol,
			}
			ok = true
		}
	}
	return best, ok
}
