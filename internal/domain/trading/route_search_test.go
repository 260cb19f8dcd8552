package trading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
)

func TestFindRoutes_ChainsHopsFromStart(t *testing.T) {
	// Arrange: trade pairs (A,B) for IRON_ORE and COPPER, (B,C) for QUARTZ_SAND
	graph := trading.NewMarketGraph(
		[]*market.MarketTradeGood{
			mtg(t, "X1-S-A", "IRON_ORE", market.RoleExport, 10, 8),
			mtg(t, "X1-S-B", "IRON_ORE", market.RoleImport, 30, 25), // hop profit 15
			mtg(t, "X1-S-A", "COPPER", market.RoleExport, 10, 8),
			mtg(t, "X1-S-B", "COPPER", market.RoleImport, 40, 30), // hop profit 20
			mtg(t, "X1-S-B", "QUARTZ_SAND", market.RoleExport, 5, 4),
			mtg(t, "X1-S-C", "QUARTZ_SAND", market.RoleImport, 20, 17), // hop profit 12
		},
		[]*shared.Waypoint{wp(t, "X1-S-A", 0, 0), wp(t, "X1-S-B", 3, 4), wp(t, "X1-S-C", 3, 14)},
	)

	// Act
	routes := trading.FindRoutes(graph.SystemTradePairs(), "X1-S-A", trading.DefaultRouteOptions())

	// Assert
	require.NotEmpty(t, routes)
	best := routes[0]
	assert.Equal(t, []string{"X1-S-A", "X1-S-B", "X1-S-C"}, best.Path)
	assert.Equal(t, 20+12, best.TotalProfit)
	assert.Equal(t, 5+10, best.TotalDistance)
	require.Len(t, best.Hops, 2)
	assert.Equal(t, "COPPER", best.Hops[0].TradeSymbol)
	assert.Equal(t, "QUARTZ_SAND", best.Hops[1].TradeSymbol)

	require.Len(t, routes, 2)
	assert.Equal(t, []string{"X1-S-A", "X1-S-B"}, routes[1].Path)
}

func TestFindRoutes_EmptyInput(t *testing.T) {
	assert.Empty(t, trading.FindRoutes(nil, "X1-S-A", trading.DefaultRouteOptions()))
}

func TestFindRoutes_UnknownStart(t *testing.T) {
	graph := trading.NewMarketGraph(
		[]*market.MarketTradeGood{
			mtg(t, "X1-S-A", "IRON_ORE", market.RoleExport, 10, 8),
			mtg(t, "X1-S-B", "IRON_ORE", market.RoleImport, 30, 25),
		},
		[]*shared.Waypoint{wp(t, "X1-S-A", 0, 0), wp(t, "X1-S-B", 3, 4)},
	)

	assert.Empty(t, trading.FindRoutes(graph.SystemTradePairs(), "X1-S-Q", trading.DefaultRouteOptions()))
}

func TestFindRoutes_PrunesShortPathsAndAvoidsCycles(t *testing.T) {
	// A chain A->B->C->D->E plus a back edge E->A
	symbols := []string{"X1-S-A", "X1-S-B", "X1-S-C", "X1-S-D", "X1-S-E"}
	var goods []*market.MarketTradeGood
	var waypoints []*shared.Waypoint
	for i, s := range symbols {
		waypoints = append(waypoints, wp(t, s, i*10, 0))
		next := symbols[(i+1)%len(symbols)]
		good := "GOOD_" + s
		goods = append(goods,
			mtg(t, s, good, market.RoleExport, 10, 8),
			mtg(t, next, good, market.RoleImport, 20, 18),
		)
	}
	graph := trading.NewMarketGraph(goods, waypoints)

	routes := trading.FindRoutes(graph.SystemTradePairs(), "X1-S-A", trading.RouteOptions{LengthSlack: 2, MaxDepth: 10})

	// Longest simple path has 5 nodes, so paths of 3, 4 and 5 nodes survive
	require.Len(t, routes, 3)
	for _, r := range routes {
		assert.GreaterOrEqual(t, len(r.Path), 3)
		seen := map[string]bool{}
		for _, node := range r.Path {
			assert.False(t, seen[node], "path %v repeats %s", r.Path, node)
			seen[node] = true
		}
	}
	assert.Len(t, routes[0].Path, 5)
}

func TestFindRoutes_MaxDepthCapsSearch(t *testing.T) {
	symbols := []string{"X1-S-A", "X1-S-B", "X1-S-C", "X1-S-D"}
	var goods []*market.MarketTradeGood
	var waypoints []*shared.Waypoint
	for i, s := range symbols {
		waypoints = append(waypoints, wp(t, s, i*10, 0))
		if i+1 < len(symbols) {
			good := "GOOD_" + s
			goods = append(goods,
				mtg(t, s, good, market.RoleExport, 10, 8),
				mtg(t, symbols[i+1], good, market.RoleImport, 20, 18),
			)
		}
	}
	graph := trading.NewMarketGraph(goods, waypoints)

	routes := trading.FindRoutes(graph.SystemTradePairs(), "X1-S-A", trading.RouteOptions{LengthSlack: 0, MaxDepth: 2})

	require.Len(t, routes, 1)
	assert.Equal(t, []string{"X1-S-A", "X1-S-B", "X1-S-C"}, routes[0].Path)
}

func TestProfitablePairs(t *testing.T) {
	graph := trading.NewMarketGraph(
		[]*market.MarketTradeGood{
			mtg(t, "X1-S-A", "IRON_ORE", market.RoleExport, 30, 8),
			mtg(t, "X1-S-B", "IRON_ORE", market.RoleImport, 30, 25),
		},
		[]*shared.Waypoint{wp(t, "X1-S-A", 0, 0), wp(t, "X1-S-B", 3, 4)},
	)

	assert.Len(t, graph.SystemTradePairs(), 1)
	assert.Empty(t, trading.ProfitablePairs(graph.SystemTradePairs()))
}

func TestFindRoutes_IgnoresUnprofitableHops(t *testing.T) {
	// A->B earns 15 a unit; B->C, C->D and D->E each lose 10
	symbols := []string{"X1-S-A", "X1-S-B", "X1-S-C", "X1-S-D", "X1-S-E"}
	var waypoints []*shared.Waypoint
	for i, s := range symbols {
		waypoints = append(waypoints, wp(t, s, i*10, 0))
	}
	goods := []*market.MarketTradeGood{
		mtg(t, "X1-S-A", "IRON_ORE", market.RoleExport, 10, 8),
		mtg(t, "X1-S-B", "IRON_ORE", market.RoleImport, 30, 25),
	}
	for i := 1; i+1 < len(symbols); i++ {
		good := "GOOD_" + symbols[i]
		goods = append(goods,
			mtg(t, symbols[i], good, market.RoleExport, 30, 28),
			mtg(t, symbols[i+1], good, market.RoleImport, 22, 20),
		)
	}
	graph := trading.NewMarketGraph(goods, waypoints)
	require.Len(t, graph.SystemTradePairs(), 4)

	routes := trading.FindRoutes(graph.SystemTradePairs(), "X1-S-A", trading.DefaultRouteOptions())

	require.Len(t, routes, 1)
	assert.Equal(t, []string{"X1-S-A", "X1-S-B"}, routes[0].Path)
	assert.Equal(t, 15, routes[0].TotalProfit)
}

func TestFindRoutes_NoProfitablePairs(t *testing.T) {
	graph := trading.NewMarketGraph(
		[]*market.MarketTradeGood{
			mtg(t, "X1-S-A", "IRON_ORE", market.RoleExport, 30, 8),
			mtg(t, "X1-S-B", "IRON_ORE", market.RoleImport, 30, 25),
		},
		[]*shared.Waypoint{wp(t, "X1-S-A", 0, 0), wp(t, "X1-S-B", 3, 4)},
	)

	assert.Empty(t, trading.FindRoutes(graph.SystemTradePairs(), "X1-S-A", trading.DefaultRouteOptions()))
}
