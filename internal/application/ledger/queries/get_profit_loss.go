package queries

import (
	"context"
	"fmt"
	"sort"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/market"
)

// GetProfitLossQuery represents a query for a ship's trading profit over
// its most recent transactions
type GetProfitLossQuery struct {
	ShipSymbol string
	Limit      int
}

// GoodProfit is the net result of one trade good
type GoodProfit struct {
	TradeSymbol string `json:"tradeSymbol" yaml:"tradeSymbol"`
	Revenue     int    `json:"revenue" yaml:"revenue"`
	Expenses    int    `json:"expenses" yaml:"expenses"`
	Net         int    `json:"net" yaml:"net"`
}

// GetProfitLossResponse represents the profit & loss statement result
type GetProfitLossResponse struct {
	ShipSymbol    string       `json:"ship" yaml:"ship"`
	Transactions  int          `json:"transactions" yaml:"transactions"`
	TotalRevenue  int          `json:"revenue" yaml:"revenue"`
	TotalExpenses int          `json:"expenses" yaml:"expenses"`
	NetProfit     int          `json:"net" yaml:"net"`
	ByGood        []GoodProfit `json:"byGood" yaml:"byGood"`
}

// GetProfitLossHandler handles the GetProfitLoss query
type GetProfitLossHandler struct {
	transactionRepo market.TransactionRepository
}

// NewGetProfitLossHandler creates a new GetProfitLossHandler
func NewGetProfitLossHandler(transactionRepo market.TransactionRepository) *GetProfitLossHandler {
	return &GetProfitLossHandler{transactionRepo: transactionRepo}
}

// Handle executes the GetProfitLoss query
func (h *GetProfitLossHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetProfitLossQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetProfitLossQuery")
	}
	if query.ShipSymbol == "" {
		return nil, fmt.Errorf("ship symbol is required")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	transactions, err := h.transactionRepo.ListByShip(ctx, query.ShipSymbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return calculateProfitLoss(query.ShipSymbol, transactions), nil
}

// calculateProfitLoss sums sells as revenue and purchases (fuel included) as expenses
func calculateProfitLoss(shipSymbol string, transactions []*market.Transaction) *GetProfitLossResponse {
	byGood := make(map[string]*GoodProfit)
	response := &GetProfitLossResponse{ShipSymbol: shipSymbol, Transactions: len(transactions)}

	for _, tx := range transactions {
		good, ok := byGood[tx.TradeSymbol]
		if !ok {
			good = &GoodProfit{TradeSymbol: tx.TradeSymbol}
			byGood[tx.TradeSymbol] = good
		}
		switch tx.Type {
		case market.TransactionSell:
			good.Revenue += tx.TotalPrice
			response.TotalRevenue += tx.TotalPrice
		case market.TransactionPurchase:
			good.Expenses += tx.TotalPrice
			response.TotalExpenses += tx.TotalPrice
		}
	}
	response.NetProfit = response.TotalRevenue - response.TotalExpenses

	response.ByGood = make([]GoodProfit, 0, len(byGood))
	for _, good := range byGood {
		good.Net = good.Revenue - good.Expenses
		response.ByGood = append(response.ByGood, *good)
	}
	sort.Slice(response.ByGood, func(i, j int) bool {
		if response.ByGood[i].Net != response.ByGood[j].Net {
			return response.ByGood[i].Net > response.ByGood[j].Net
		}
		return response.ByGood[i].TradeSymbol < response.ByGood[j].TradeSymbol
	})
	return response
}
