package market

import "context"

// TradeGoodFilter narrows a MarketTradeGood query. Empty fields match everything.
type TradeGoodFilter struct {
	SystemSymbol   string
	WaypointSymbol string
	TradeSymbol    string
	Role           Role
}

// MarketRepository is the local market cache
type MarketRepository interface {
	// Save records catalog membership, upserts each MarketTradeGood by
	// (market, trade good, role) and appends unseen transactions.
	Save(ctx context.Context, m *Market) error

	// FindByWaypoint returns the cached market, or nil when none is cached
	FindByWaypoint(ctx context.Context, waypointSymbol string) (*Market, error)

	// ListTradeGoods returns priced details matching filter
	ListTradeGoods(ctx context.Context, filter TradeGoodFilter) ([]*MarketTradeGood, error)

	// ListExportMarkets returns the waypoints of a system whose catalog lists
	// at least one export, priced or not
	ListExportMarkets(ctx context.Context, systemSymbol string) ([]string, error)

	// EnsureCatalog creates catalog entries that do not exist yet
	EnsureCatalog(ctx context.Context, goods []TradeGood) error
}

// TransactionRepository stores the append-only transaction history
type TransactionRepository interface {
	// Record appends tx unless a transaction with the same natural key exists.
	// Returns true when a new row was written.
	Record(ctx context.Context, tx *Transaction) (bool, error)

	// ListByShip returns the most recent transactions of a ship, newest first
	ListByShip(ctx context.Context, shipSymbol string, limit int) ([]*Transaction, error)
}
