package market_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/domain/market"
)

func TestNewMarketTradeGood_Validation(t *testing.T) {
	_, err := market.NewMarketTradeGood("X1-A-1", "IRON_ORE", market.RoleExport, "PLENTY", "", 1, 1, 1)
	assert.ErrorIs(t, err, market.ErrInvalidSupply)

	_, err = market.NewMarketTradeGood("X1-A-1", "IRON_ORE", market.RoleExport, "HIGH", "LAZY", 1, 1, 1)
	assert.ErrorIs(t, err, market.ErrInvalidActivity)

	_, err = market.NewMarketTradeGood("X1-A-1", "IRON_ORE", market.Role("BARTER"), "HIGH", "WEAK", 1, 1, 1)
	assert.ErrorIs(t, err, market.ErrInvalidRole)

	_, err = market.NewMarketTradeGood("X1-A-1", "IRON_ORE", market.RoleImport, "HIGH", "WEAK", -1, 1, 1)
	assert.ErrorIs(t, err, market.ErrInvalidPrice)

	good, err := market.NewMarketTradeGood("X1-A-1", "FUEL", market.RoleExchange, "MODERATE", "", 72, 68, 100)
	require.NoError(t, err)
	assert.Equal(t, "X1-A-1|FUEL|EXCHANGE", good.Key())
	assert.Empty(t, good.Activity())
}

func TestMarket_LookupsAndCatalog(t *testing.T) {
	iron, _ := market.NewMarketTradeGood("X1-A-1", "IRON_ORE", market.RoleExport, "HIGH", "STRONG", 10, 8, 60)
	fuel, _ := market.NewMarketTradeGood("X1-A-1", "FUEL", market.RoleExchange, "MODERATE", "", 72, 68, 100)
	tx := &market.Transaction{WaypointSymbol: "X1-A-1", ShipSymbol: "AGENT-1", TradeSymbol: "ICE_WATER", Type: market.TransactionSell, Units: 1, Timestamp: time.Now()}

	m, err := market.NewMarket("X1-A-1",
		[]market.TradeGood{{Symbol: "IRON_ORE", Name: "Iron Ore"}},
		[]market.TradeGood{{Symbol: "COPPER", Name: "Copper"}},
		[]market.TradeGood{{Symbol: "FUEL", Name: "Fuel"}},
		[]*market.MarketTradeGood{iron, fuel},
		[]*market.Transaction{tx},
		time.Now(),
	)
	require.NoError(t, err)

	assert.Same(t, iron, m.FindGood("IRON_ORE", market.RoleExport))
	assert.Nil(t, m.FindGood("IRON_ORE", market.RoleImport))
	assert.Len(t, m.GoodsWithRole(market.RoleExport), 1)
	assert.Equal(t, 60, m.GetTransactionLimit("IRON_ORE"))
	assert.Equal(t, 0, m.GetTransactionLimit("GOLD"))
	assert.True(t, m.Trades("COPPER"))

	var symbols []string
	for _, good := range m.Catalog() {
		symbols = append(symbols, good.Symbol)
	}
	assert.Equal(t, []string{"COPPER", "FUEL", "ICE_WATER", "IRON_ORE"}, symbols)
}

func TestTransaction_NaturalKeyAndValidate(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tx := &market.Transaction{
		WaypointSymbol: "X1-A-1", ShipSymbol: "AGENT-1", TradeSymbol: "FUEL",
		Type: market.TransactionPurchase, Units: 5, PricePerUnit: 70, TotalPrice: 350, Timestamp: ts,
	}

	require.NoError(t, tx.Validate())
	assert.Equal(t, "X1-A-1|AGENT-1|FUEL|5|70|2024-01-01T12:00:00Z", tx.NaturalKey())

	tx.ShipSymbol = ""
	assert.ErrorIs(t, tx.Validate(), market.ErrInvalidTransaction)
}

func TestNewCatalogEntry_FallsBackToSymbol(t *testing.T) {
	good, err := market.NewCatalogEntry("QUARTZ_SAND", "", "")
	require.NoError(t, err)
	assert.Equal(t, "QUARTZ_SAND", good.Name)

	_, err = market.NewCatalogEntry("", "x", "")
	assert.ErrorIs(t, err, market.ErrInvalidGoodSymbol)
}
