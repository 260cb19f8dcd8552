package queries

import (
	"context"
	"fmt"
	"sort"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/trading/services"
	"github.com/ropable/spacetraders-api/internal/application/trading/types"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
)

// ArbitrageQuery ranks the destinations of every export of a market.
// TradeSymbol optionally narrows the result to one good.
type ArbitrageQuery struct {
	WaypointSymbol string
	TradeSymbol    string
}

// ArbitrageResponse lists exports ordered by trade symbol
type ArbitrageResponse struct {
	WaypointSymbol string                     `json:"waypoint" yaml:"waypoint"`
	Exports        []types.ExportArbitrageDTO `json:"exports" yaml:"exports"`
}

// ArbitrageHandler handles arbitrage queries
type ArbitrageHandler struct {
	loader *services.MarketGraphLoader
}

// NewArbitrageHandler creates a new arbitrage handler
func NewArbitrageHandler(loader *services.MarketGraphLoader) *ArbitrageHandler {
	return &ArbitrageHandler{loader: loader}
}

// Handle executes the query
func (h *ArbitrageHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ArbitrageQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if query.WaypointSymbol == "" {
		return nil, fmt.Errorf("waypoint symbol is required")
	}

	graph, err := h.loader.Load(ctx, shared.ExtractSystemSymbol(query.WaypointSymbol))
	if err != nil {
		return nil, err
	}

	response := &ArbitrageResponse{WaypointSymbol: query.WaypointSymbol, Exports: []types.ExportArbitrageDTO{}}
	for _, export := range graph.ExportsAt(query.WaypointSymbol) {
		if query.TradeSymbol != "" && export.Symbol() != query.TradeSymbol {
			continue
		}
		destinations := graph.Arbitrage(export)
		if destinations == nil {
			destinations = []trading.ArbitrageDestination{}
		}
		response.Exports = append(response.Exports, types.ExportArbitrageDTO{
			TradeSymbol:  export.Symbol(),
			SellPrice:    export.SellPrice(),
			Supply:       export.Supply(),
			Destinations: destinations,
		})
	}
	sortExports(response.Exports)
	return response, nil
}

func sortExports(exports []types.ExportArbitrageDTO) {
	sort.Slice(exports, func(i, j int) bool { return exports[i].TradeSymbol < exports[j].TradeSymbol })
}

// BestExportQuery asks for the most attractive export of a market
type BestExportQuery struct {
	WaypointSymbol string
}

// BestExportResponse carries the pick; Found is false when the market has
// no export with a valid destination
type BestExportResponse struct {
	Found bool                `json:"found" yaml:"found"`
	Best  *trading.BestExport `json:"best,omitempty" yaml:"best,omitempty"`
}

// BestExportHandler handles best export queries
type BestExportHandler struct {
	loader *services.MarketGraphLoader
}

// NewBestExportHandler creates a new best export handler
func NewBestExportHandler(loader *services.MarketGraphLoader) *BestExportHandler {
	return &BestExportHandler{loader: loader}
}

// Handle executes the query
func (h *BestExportHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*BestExportQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	graph, err := h.loader.Load(ctx, shared.ExtractSystemSymbol(query.WaypointSymbol))
	if err != nil {
		return nil, err
	}
	best, found := graph.BestExport(query.WaypointSymbol)
	if !found {
		return &BestExportResponse{}, nil
	}
	return &BestExportResponse{Found: true, Best: &best}, nil
}
