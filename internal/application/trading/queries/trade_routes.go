package queries

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/trading/services"
	"github.com/ropable/spacetraders-api/internal/application/trading/types"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
)

// SystemTradePairsQuery lists the export -> import matches of a system
type SystemTradePairsQuery struct {
	SystemSymbol   string
	ProfitableOnly bool
	Limit          int
}

// SystemTradePairsResponse contains the ranked pairs
type SystemTradePairsResponse struct {
	SystemSymbol string               `json:"system" yaml:"system"`
	Pairs        []types.TradePairDTO `json:"pairs" yaml:"pairs"`
}

// SystemTradePairsHandler handles trade pair queries
type SystemTradePairsHandler struct {
	loader *services.MarketGraphLoader
}

// NewSystemTradePairsHandler creates a new trade pair handler
func NewSystemTradePairsHandler(loader *services.MarketGraphLoader) *SystemTradePairsHandler {
	return &SystemTradePairsHandler{loader: loader}
}

// Handle executes the query
func (h *SystemTradePairsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*SystemTradePairsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	graph, err := h.loader.Load(ctx, query.SystemSymbol)
	if err != nil {
		return nil, err
	}
	pairs := graph.SystemTradePairs()
	if query.ProfitableOnly {
		pairs = trading.ProfitablePairs(pairs)
	}
	if query.Limit > 0 && len(pairs) > query.Limit {
		pairs = pairs[:query.Limit]
	}

	dtos := make([]types.TradePairDTO, 0, len(pairs))
	for _, p := range pairs {
		dtos = append(dtos, types.NewTradePairDTO(p))
	}
	return &SystemTradePairsResponse{SystemSymbol: query.SystemSymbol, Pairs: dtos}, nil
}

// TradeRoutesQuery searches multi-hop routes starting at a waypoint.
// Zero tuning values fall back to the package defaults.
type TradeRoutesQuery struct {
	SystemSymbol string
	Start        string
	LengthSlack  *int
	MaxDepth     int
	Limit        int
}

// TradeRoutesResponse contains routes ordered by total profit
type TradeRoutesResponse struct {
	Start  string               `json:"start" yaml:"start"`
	Routes []trading.TradeRoute `json:"routes" yaml:"routes"`
}

// TradeRoutesHandler handles trade route queries
type TradeRoutesHandler struct {
	loader   *services.MarketGraphLoader
	defaults trading.RouteOptions
}

// NewTradeRoutesHandler creates a new trade route handler
func NewTradeRoutesHandler(loader *services.MarketGraphLoader, defaults trading.RouteOptions) *TradeRoutesHandler {
	if defaults.MaxDepth <= 0 {
		defaults.MaxDepth = trading.DefaultMaxRouteDepth
	}
	return &TradeRoutesHandler{loader: loader, defaults: defaults}
}

// Handle executes the query
func (h *TradeRoutesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*TradeRoutesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if query.Start == "" {
		return nil, fmt.Errorf("start waypoint is required")
	}

	opts := h.defaults
	if query.LengthSlack != nil {
		opts.LengthSlack = *query.LengthSlack
	}
	if query.MaxDepth > 0 {
		opts.MaxDepth = query.MaxDepth
	}

	systemSymbol := query.SystemSymbol
	if systemSymbol == "" {
		systemSymbol = shared.ExtractSystemSymbol(query.Start)
	}
	graph, err := h.loader.Load(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}
	routes := trading.FindRoutes(graph.SystemTradePairs(), query.Start, opts)
	if query.Limit > 0 && len(routes) > query.Limit {
		routes = routes[:query.Limit]
	}
	return &TradeRoutesResponse{Start: query.Start, Routes: routes}, nil
}
