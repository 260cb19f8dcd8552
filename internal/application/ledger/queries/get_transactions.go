package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/market"
)

// DefaultTransactionLimit caps a history listing when no limit is given
const DefaultTransactionLimit = 50

// GetTransactionsQuery represents a query for a ship's recent trades
type GetTransactionsQuery struct {
	ShipSymbol string
	Limit      int
}

// GetTransactionsResponse represents the result of the query
type GetTransactionsResponse struct {
	ShipSymbol   string            `json:"ship" yaml:"ship"`
	Transactions []*TransactionDTO `json:"transactions" yaml:"transactions"`
}

// TransactionDTO represents a transaction data transfer object
type TransactionDTO struct {
	Timestamp      string `json:"timestamp" yaml:"timestamp"`
	WaypointSymbol string `json:"waypoint" yaml:"waypoint"`
	TradeSymbol    string `json:"tradeSymbol" yaml:"tradeSymbol"`
	Type           string `json:"type" yaml:"type"`
	Units          int    `json:"units" yaml:"units"`
	PricePerUnit   int    `json:"pricePerUnit" yaml:"pricePerUnit"`
	TotalPrice     int    `json:"totalPrice" yaml:"totalPrice"`
}

// GetTransactionsHandler handles the GetTransactions query
type GetTransactionsHandler struct {
	transactionRepo market.TransactionRepository
}

// NewGetTransactionsHandler creates a new GetTransactionsHandler
func NewGetTransactionsHandler(transactionRepo market.TransactionRepository) *GetTransactionsHandler {
	return &GetTransactionsHandler{transactionRepo: transactionRepo}
}

// Handle executes the GetTransactions query
func (h *GetTransactionsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetTransactionsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetTransactionsQuery")
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

	dtos := make([]*TransactionDTO, len(transactions))
	for i, tx := range transactions {
		dtos[i] = toDTO(tx)
	}
	return &GetTransactionsResponse{ShipSymbol: query.ShipSymbol, Transactions: dtos}, nil
}

func toDTO(tx *market.Transaction) *TransactionDTO {
	return &TransactionDTO{
		Timestamp:      tx.Timestamp.UTC().Format(time.RFC3339),
		WaypointSymbol: tx.WaypointSymbol,
		TradeSymbol:    tx.TradeSymbol,
		Type:           string(tx.Type),
		Units:          tx.Units,
		PricePerUnit:   tx.PricePerUnit,
		TotalPrice:     tx.TotalPrice,
	}
}
