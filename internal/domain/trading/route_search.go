package trading

import (
	"sort"
	"strings"
)

const (
	// DefaultRouteLengthSlack keeps paths whose node count is within this many
	// of the longest path found.
	DefaultRouteLengthSlack = 2

	// DefaultMaxRouteDepth caps the number of hops explored from the start.
	DefaultMaxRouteDepth = 8
)

// RouteOptions tunes the exhaustive route search
type RouteOptions struct {
	LengthSlack int
	MaxDepth    int
}

// DefaultRouteOptions returns the default tuning constants
func DefaultRouteOptions() RouteOptions {
	return RouteOptions{LengthSlack: DefaultRouteLengthSlack, MaxDepth: DefaultMaxRouteDepth}
}

// Hop is one leg of a trade route carrying the best good for that leg
type Hop struct {
	From        string `json:"from" yaml:"from"`
	To          string `json:"to" yaml:"to"`
	TradeSymbol string `json:"tradeSymbol" yaml:"tradeSymbol"`
	Profit      int    `json:"profit" yaml:"profit"`
	Distance    int    `json:"distance" yaml:"distance"`
}

// TradeRoute is a simple path through the market graph with its accumulated
// profit and distance
type TradeRoute struct {
	Path          []string `json:"path" yaml:"path"`
	Hops          []Hop    `json:"hops" yaml:"hops"`
	TotalProfit   int      `json:"totalProfit" yaml:"totalProfit"`
	TotalDistance int      `json:"totalDistance" yaml:"totalDistance"`
}

func (r TradeRoute) String() string {
	return strings.Join(r.Path, " -> ")
}

// tradeGraph is a directed adjacency list built from trade pairs
type tradeGraph struct {
	edges map[string][]string
	best  map[[2]string]TradePair
}

func buildTradeGraph(pairs []TradePair) *tradeGraph {
	g := &tradeGraph{
		edges: make(map[string][]string),
		best:  make(map[[2]string]TradePair),
	}
	for _, p := range pairs {
		key := [2]string{p.From(), p.To()}
		current, seen := g.best[key]
		if !seen {
			g.edges[p.From()] = append(g.edges[p.From()], p.To())
		}
		if !seen || p.HopProfit() > current.HopProfit() ||
			(p.HopProfit() == current.HopProfit() && p.TradeSymbol() < current.TradeSymbol()) {
			g.best[key] = p
		}
	}
	for from := range g.edges {
		sort.Strings(g.edges[from])
	}
	return g
}

// simplePaths enumerates every simple path of at least two nodes starting at
// start, depth-first, up to maxDepth hops.
func (g *tradeGraph) simplePaths(start string, maxDepth int) [][]string {
	var paths [][]string
	visited := map[string]bool{start: true}
	path := []string{start}

	var walk func(node string)
	walk = func(node string) {
		if maxDepth > 0 && len(path)-1 >= maxDepth {
			return
		}
		for _, next := range g.edges[node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			paths = append(paths, append([]string(nil), path...))

			walk(next)

			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk(start)
	return paths
}

// FindRoutes enumerates trade routes from start over the given pairs.
//
// Only pairs with a positive HopProfit become edges. Every simple path is
// discovered by exhaustive depth-first search; only paths whose node count is
// within opts.LengthSlack of the longest are kept.
// Each hop carries the pair with the highest HopProfit between its two
// waypoints. Routes are sorted by total profit descending, then by shorter
// total distance, then by path. The search is exponential in the worst case,
// so opts.MaxDepth bounds the number of hops.
func FindRoutes(pairs []TradePair, start string, opts RouteOptions) []TradeRoute {
	if len(pairs) == 0 || start == "" {
		return []TradeRoute{}
	}
	if opts.LengthSlack < 0 {
		opts.LengthSlack = 0
	}

	graph := buildTradeGraph(ProfitablePairs(pairs))
	paths := graph.simplePaths(start, opts.MaxDepth)
	if len(paths) == 0 {
		return []TradeRoute{}
	}

	maxLen := 0
	for _, p := range paths {
		if len(p) > maxLen {
			maxLen = len(p)
		}
	}

	routes := make([]TradeRoute, 0, len(paths))
	for _, p := range paths {
		if len(p) < maxLen-opts.LengthSlack {
			continue
		}
		route := TradeRoute{Path: p, Hops: make([]Hop, 0, len(p)-1)}
		for i := 0; i+1 < len(p); i++ {
			pair := graph.best[[2]string{p[i], p[i+1]}]
			hop := Hop{
				From:        p[i],
				To:          p[i+1],
				TradeSymbol: pair.TradeSymbol(),
				Profit:      pair.HopProfit(),
				Distance:    pair.Distance,
			}
			route.Hops = append(route.Hops, hop)
			route.TotalProfit += hop.Profit
			route.TotalDistance += hop.Distance
		}
		routes = append(routes, route)
	}

	sort.SliceStable(routes, func(i, j int) bool {
		a, b := routes[i], routes[j]
		if a.TotalProfit != b.TotalProfit {
			return a.TotalProfit > b.TotalProfit
		}
		if a.TotalDistance != b.TotalDistance {
			return a.TotalDistance < b.TotalDistance
		}
		return a.String() < b.String()
	})
	return routes
}
