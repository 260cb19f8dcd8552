package trading

import (
	"math"
	"sort"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// MarketGraph is a read-only snapshot of priced market goods plus the
// coordinates of the waypoints they sit at. Goods whose waypoint has no known
// coordinates are left out; missing data only shrinks the candidate set.
type MarketGraph struct {
	coords  map[string]shared.Coordinates
	exports map[string][]*market.MarketTradeGood // by waypoint
	imports map[string][]*market.MarketTradeGood // by trade symbol
	all     []*market.MarketTradeGood

	// waypoints whose catalog lists exports, priced or not
	catalogExports map[string]bool
}

// NewMarketGraph indexes goods for arbitrage queries
func NewMarketGraph(goods []*market.MarketTradeGood, waypoints []*shared.Waypoint) *MarketGraph {
	g := &MarketGraph{
		coords:  make(map[string]shared.Coordinates, len(waypoints)),
		exports: make(map[string][]*market.MarketTradeGood),
		imports: make(map[string][]*market.MarketTradeGood),

		catalogExports: make(map[string]bool),
	}
	for _, wp := range waypoints {
		if wp != nil {
			g.coords[wp.Symbol] = wp.Coordinates()
		}
	}

	for _, good := range goods {
		if good == nil {
			continue
		}
		if _, ok := g.coords[good.WaypointSymbol()]; !ok {
			continue
		}
		g.all = append(g.all, good)
		switch good.Role() {
		case market.RoleExport:
			g.exports[good.WaypointSymbol()] = append(g.exports[good.WaypointSymbol()], good)
		case market.RoleImport:
			g.imports[good.Symbol()] = append(g.imports[good.Symbol()], good)
		}
	}
	return g
}

// WithCatalogExports marks markets whose catalog lists exports that may not
// have been priced yet. ExportMarketsByDistance counts them as export markets.
func (g *MarketGraph) WithCatalogExports(waypointSymbols []string) *MarketGraph {
	for _, symbol := range waypointSymbols {
		g.catalogExports[symbol] = true
	}
	return g
}

// Coordinates returns the known position of a waypoint
func (g *MarketGraph) Coordinates(waypointSymbol string) (shared.Coordinates, bool) {
	c, ok := g.coords[waypointSymbol]
	return c, ok
}

// ExportsAt returns the EXPORT goods of a market
func (g *MarketGraph) ExportsAt(waypointSymbol string) []*market.MarketTradeGood {
	return g.exports[waypointSymbol]
}

// Matches returns every IMPORT good of the same trade good as export.
// The match is a directed export -> import relation.
func (g *MarketGraph) Matches(export *market.MarketTradeGood) []*market.MarketTradeGood {
	if export == nil || export.Role() != market.RoleExport {
		return nil
	}
	return g.imports[export.Symbol()]
}

// flooredDistance returns floor(euclidean distance) between two cached waypoints
func (g *MarketGraph) flooredDistance(from, to string) (int, bool) {
	a, ok := g.coords[from]
	if !ok {
		return 0, false
	}
	b, ok := g.coords[to]
	if !ok {
		return 0, false
	}
	return int(math.Floor(shared.Distance(a, b))), true
}

// MarketDistance is a market and its distance from some origin
type MarketDistance struct {
	WaypointSymbol string
	Distance       float64
}

// ExportMarketsByDistance lists markets exporting at least one good, nearest
// to origin first. A market counts when it has a priced export or its catalog
// lists one. The origin itself is excluded; ties break on symbol.
func (g *MarketGraph) ExportMarketsByDistance(origin string) []MarketDistance {
	from, ok := g.coords[origin]
	if !ok {
		return nil
	}

	candidates := make(map[string]bool, len(g.exports)+len(g.catalogExports))
	for symbol, goods := range g.exports {
		if len(goods) > 0 {
			candidates[symbol] = true
		}
	}
	for symbol := range g.catalogExports {
		candidates[symbol] = true
	}

	markets := make([]MarketDistance, 0, len(candidates))
	for symbol := range candidates {
		to, known := g.coords[symbol]
		if symbol == origin || !known {
			continue
		}
		markets = append(markets, MarketDistance{
			WaypointSymbol: symbol,
			Distance:       shared.Distance(from, to),
		})
	}

	sort.Slice(markets, func(i, j int) bool {
		if markets[i].Distance != markets[j].Distance {
			return markets[i].Distance < markets[j].Distance
		}
		return markets[i].WaypointSymbol < markets[j].WaypointSymbol
	})
	return markets
}

// roundTo rounds x to the given number of decimal places, half away from zero
func roundTo(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}
