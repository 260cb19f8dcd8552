package queries

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/trading/types"
	"github.com/ropable/spacetraders-api/internal/domain/market"
)

// MarketSource reads a market from the cache, fetching it on a miss, or
// forces a live fetch. Satisfied by ship/commands.ActionSupport.
type MarketSource interface {
	MarketAt(ctx context.Context, waypointSymbol string) (*market.Market, error)
	RefreshMarket(ctx context.Context, waypointSymbol string) (*market.Market, error)
}

// GetMarketQuery reads the market at a waypoint. Refresh bypasses the cache.
type GetMarketQuery struct {
	WaypointSymbol string
	Refresh        bool
}

// GetMarketResponse carries the market
type GetMarketResponse struct {
	Market types.MarketDTO `json:"market" yaml:"market"`
}

// GetMarketHandler handles market reads
type GetMarketHandler struct {
	source MarketSource
}

// NewGetMarketHandler creates a new market read handler
func NewGetMarketHandler(source MarketSource) *GetMarketHandler {
	return &GetMarketHandler{source: source}
}

// Handle executes the query
func (h *GetMarketHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetMarketQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if query.WaypointSymbol == "" {
		return nil, fmt.Errorf("waypoint symbol is required")
	}

	var (
		m   *market.Market
		err error
	)
	if query.Refresh {
		m, err = h.source.RefreshMarket(ctx, query.WaypointSymbol)
	} else {
		m, err = h.source.MarketAt(ctx, query.WaypointSymbol)
	}
	if err != nil {
		return nil, err
	}
	return &GetMarketResponse{Market: toMarketDTO(m)}, nil
}

func toMarketDTO(m *market.Market) types.MarketDTO {
	dto := types.MarketDTO{
		WaypointSymbol: m.WaypointSymbol(),
		LastUpdated:    m.LastUpdated().UTC().Format(time.RFC3339),
		Goods:          make([]types.MarketGoodDTO, 0, len(m.TradeGoods())),
	}
	for _, g := range m.TradeGoods() {
		dto.Goods = append(dto.Goods, types.MarketGoodDTO{
			TradeSymbol:   g.Symbol(),
			Role:          string(g.Role()),
			Supply:        g.Supply(),
			Activity:      g.Activity(),
			PurchasePrice: g.PurchasePrice(),
			SellPrice:     g.SellPrice(),
			TradeVolume:   g.TradeVolume(),
			UpdatedAt:     g.UpdatedAt().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(dto.Goods, func(i, j int) bool {
		if dto.Goods[i].Role != dto.Goods[j].Role {
			return dto.Goods[i].Role < dto.Goods[j].Role
		}
		return dto.Goods[i].TradeSymbol < dto.Goods[j].TradeSymbol
	})
	return dto
}
