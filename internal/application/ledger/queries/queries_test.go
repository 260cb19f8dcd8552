package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/application/ledger/queries"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func seed(t *testing.T) *helpers.MockTransactionRepository {
	t.Helper()
	repo := helpers.NewMockTransactionRepository()
	txs := []market.Transaction{
		{TradeSymbol: "FUEL", Type: market.TransactionPurchase, Units: 3, PricePerUnit: 72, TotalPrice: 216},
		{TradeSymbol: "IRON_ORE", Type: market.TransactionPurchase, Units: 20, PricePerUnit: 12, TotalPrice: 240},
		{TradeSymbol: "IRON_ORE", Type: market.TransactionSell, Units: 20, PricePerUnit: 35, TotalPrice: 700},
	}
	for i := range txs {
		tx := txs[i]
		tx.WaypointSymbol = "X1-TEST-A1"
		tx.ShipSymbol = "AGENT-1"
		tx.Timestamp = helpers.Epoch.Add(time.Duration(i) * time.Minute)
		_, err := repo.Record(context.Background(), &tx)
		require.NoError(t, err)
	}
	return repo
}

func TestGetTransactions_NewestFirst(t *testing.T) {
	handler := queries.NewGetTransactionsHandler(seed(t))

	response, err := handler.Handle(context.Background(), &queries.GetTransactionsQuery{ShipSymbol: "AGENT-1", Limit: 2})
	require.NoError(t, err)

	txs := response.(*queries.GetTransactionsResponse).Transactions
	require.Len(t, txs, 2)
	assert.Equal(t, "SELL", txs[0].Type)
	assert.Equal(t, "2025-06-01T12:02:00Z", txs[0].Timestamp)
	assert.Equal(t, "PURCHASE", txs[1].Type)
}

func TestGetTransactions_RequiresShip(t *testing.T) {
	handler := queries.NewGetTransactionsHandler(seed(t))

	_, err := handler.Handle(context.Background(), &queries.GetTransactionsQuery{})
	assert.EqualError(t, err, "ship symbol is required")
}

func TestGetProfitLoss_NetsSellsAgainstPurchases(t *testing.T) {
	handler := queries.NewGetProfitLossHandler(seed(t))

	response, err := handler.Handle(context.Background(), &queries.GetProfitLossQuery{ShipSymbol: "AGENT-1"})
	require.NoError(t, err)

	pl := response.(*queries.GetProfitLossResponse)
	assert.Equal(t, 3, pl.Transactions)
	assert.Equal(t, 700, pl.TotalRevenue)
	assert.Equal(t, 456, pl.TotalExpenses)
	assert.Equal(t, 244, pl.NetProfit)
	require.Len(t, pl.ByGood, 2)
	assert.Equal(t, queries.GoodProfit{TradeSymbol: "IRON_ORE", Revenue: 700, Expenses: 240, Net: 460}, pl.ByGood[0])
	assert.Equal(t, queries.GoodProfit{TradeSymbol: "FUEL", Expenses: 216, Net: -216}, pl.ByGood[1])
}
