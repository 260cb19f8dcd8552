package market

import (
	"sort"
	"time"
)

// Market is the trading post attached 1:1 to a waypoint.
// Exports, Imports and Exchange reference catalog goods; TradeGoods holds the
// priced detail, which is only visible while a ship is present.
type Market struct {
	waypointSymbol string
	exports        []TradeGood
	imports        []TradeGood
	exchange       []TradeGood
	tradeGoods     []*MarketTradeGood
	transactions   []*Transaction
	lastUpdated    time.Time
}

// NewMarket creates a new Market with validation
func NewMarket(
	waypointSymbol string,
	exports, imports, exchange []TradeGood,
	tradeGoods []*MarketTradeGood,
	transactions []*Transaction,
	lastUpdated time.Time,
) (*Market, error) {
	if waypointSymbol == "" {
		return nil, ErrInvalidWaypointSymbol
	}

	return &Market{
		waypointSymbol: waypointSymbol,
		exports:        append([]TradeGood(nil), exports...),
		imports:        append([]TradeGood(nil), imports...),
		exchange:       append([]TradeGood(nil), exchange...),
		tradeGoods:     append([]*MarketTradeGood(nil), tradeGoods...),
		transactions:   append([]*Transaction(nil), transactions...),
		lastUpdated:    lastUpdated.UTC(),
	}, nil
}

func (m *Market) WaypointSymbol() string {
	return m.waypointSymbol
}

func (m *Market) Exports() []TradeGood {
	return m.exports
}

func (m *Market) Imports() []TradeGood {
	return m.imports
}

func (m *Market) Exchange() []TradeGood {
	return m.exchange
}

func (m *Market) TradeGoods() []*MarketTradeGood {
	return m.tradeGoods
}

func (m *Market) Transactions() []*Transaction {
	return m.transactions
}

func (m *Market) LastUpdated() time.Time {
	return m.lastUpdated
}

// Catalog returns every good referenced by the market, deduplicated by symbol
func (m *Market) Catalog() []TradeGood {
	seen := make(map[string]TradeGood)
	for _, group := range [][]TradeGood{m.exports, m.imports, m.exchange} {
		for _, good := range group {
			if _, ok := seen[good.Symbol]; !ok {
				seen[good.Symbol] = good
			}
		}
	}
	for _, good := range m.tradeGoods {
		if _, ok := seen[good.Symbol()]; !ok {
			seen[good.Symbol()] = TradeGood{Symbol: good.Symbol(), Name: good.Symbol()}
		}
	}
	for _, tx := range m.transactions {
		if _, ok := seen[tx.TradeSymbol]; !ok {
			seen[tx.TradeSymbol] = TradeGood{Symbol: tx.TradeSymbol, Name: tx.TradeSymbol}
		}
	}

	catalog := make([]TradeGood, 0, len(seen))
	for _, good := range seen {
		catalog = append(catalog, good)
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].Symbol < catalog[j].Symbol })
	return catalog
}

// FindGood returns the priced detail for symbol in role, or nil
func (m *Market) FindGood(symbol string, role Role) *MarketTradeGood {
	for _, good := range m.tradeGoods {
		if good.Symbol() == symbol && good.Role() == role {
			return good
		}
	}
	return nil
}

// FindAnyRole returns the first priced detail for symbol regardless of role
func (m *Market) FindAnyRole(symbol string) *MarketTradeGood {
	for _, good := range m.tradeGoods {
		if good.Symbol() == symbol {
			return good
		}
	}
	return nil
}

// GoodsWithRole returns the priced details for role
func (m *Market) GoodsWithRole(role Role) []*MarketTradeGood {
	var goods []*MarketTradeGood
	for _, good := range m.tradeGoods {
		if good.Role() == role {
			goods = append(goods, good)
		}
	}
	return goods
}

// Trades reports whether the market lists symbol in any role
func (m *Market) Trades(symbol string) bool {
	for _, group := range [][]TradeGood{m.exports, m.imports, m.exchange} {
		for _, good := range group {
			if good.Symbol == symbol {
				return true
			}
		}
	}
	return m.FindAnyRole(symbol) != nil
}

// GetTransactionLimit returns the trade volume for symbol, or 0 when unknown
func (m *Market) GetTransactionLimit(symbol string) int {
	if good := m.FindAnyRole(symbol); good != nil {
		return good.TradeVolume()
	}
	return 0
}
