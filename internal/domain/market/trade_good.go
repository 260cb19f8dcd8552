package market

import (
	"fmt"
	"time"
)

// Role is the side of the market a trade good sits on
type Role string

const (
	RoleExport   Role = "EXPORT"
	RoleImport   Role = "IMPORT"
	RoleExchange Role = "EXCHANGE"
)

// ParseRole validates an upstream trade good type
func ParseRole(value string) (Role, error) {
	switch r := Role(value); r {
	case RoleExport, RoleImport, RoleExchange:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, value)
	}
}

// Valid supply values, scarce to abundant
var validSupplyValues = map[string]bool{
	"SCARCE":   true,
	"LIMITED":  true,
	"MODERATE": true,
	"HIGH":     true,
	"ABUNDANT": true,
}

// Valid activity values, weak to restricted
var validActivityValues = map[string]bool{
	"WEAK":       true,
	"GROWING":    true,
	"STRONG":     true,
	"RESTRICTED": true,
}

// TradeGood is an entry of the global trade good catalog
type TradeGood struct {
	Symbol      string
	Name        string
	Description string
}

// NewCatalogEntry returns a catalog entry, falling back to the symbol when the
// display name is unknown so a good can be recorded on first sight.
func NewCatalogEntry(symbol, name, description string) (TradeGood, error) {
	if symbol == "" {
		return TradeGood{}, ErrInvalidGoodSymbol
	}
	if name == "" {
		name = symbol
	}
	return TradeGood{Symbol: symbol, Name: name, Description: description}, nil
}

// MarketTradeGood is the pricing detail of one (market, trade good, role) triple.
// Prices are from the ship's point of view:
// - PurchasePrice: what a ship pays to buy here
// - SellPrice: what a ship receives selling here
type MarketTradeGood struct {
	waypointSymbol string
	symbol         string
	role           Role
	supply         string
	activity       string // empty for EXCHANGE goods
	purchasePrice  int
	sellPrice      int
	tradeVolume    int
	updatedAt      time.Time
}

// NewMarketTradeGood creates a MarketTradeGood with validation
func NewMarketTradeGood(
	waypointSymbol string,
	symbol string,
	role Role,
	supply string,
	activity string,
	purchasePrice int,
	sellPrice int,
	tradeVolume int,
) (*MarketTradeGood, error) {
	if waypointSymbol == "" {
		return nil, ErrInvalidWaypointSymbol
	}
	if symbol == "" {
		return nil, ErrInvalidGoodSymbol
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	if purchasePrice < 0 || sellPrice < 0 {
		return nil, ErrInvalidPrice
	}
	if tradeVolume < 0 {
		return nil, ErrInvalidTradeVolume
	}
	if supply != "" && !validSupplyValues[supply] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSupply, supply)
	}
	if activity != "" && !validActivityValues[activity] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidActivity, activity)
	}

	return &MarketTradeGood{
		waypointSymbol: waypointSymbol,
		symbol:         symbol,
		role:           role,
		supply:         supply,
		activity:       activity,
		purchasePrice:  purchasePrice,
		sellPrice:      sellPrice,
		tradeVolume:    tradeVolume,
	}, nil
}

// WithUpdatedAt returns a copy stamped with the observation time
func (g *MarketTradeGood) WithUpdatedAt(t time.Time) *MarketTradeGood {
	copied := *g
	copied.updatedAt = t.UTC()
	return &copied
}

func (g *MarketTradeGood) WaypointSymbol() string {
	return g.waypointSymbol
}

func (g *MarketTradeGood) Symbol() string {
	return g.symbol
}

func (g *MarketTradeGood) Role() Role {
	return g.role
}

func (g *MarketTradeGood) Supply() string {
	return g.supply
}

func (g *MarketTradeGood) Activity() string {
	return g.activity
}

func (g *MarketTradeGood) PurchasePrice() int {
	return g.purchasePrice
}

func (g *MarketTradeGood) SellPrice() int {
	return g.sellPrice
}

func (g *MarketTradeGood) TradeVolume() int {
	return g.tradeVolume
}

func (g *MarketTradeGood) UpdatedAt() time.Time {
	return g.updatedAt
}

// Key is the natural uniqueness key of the record
func (g *MarketTradeGood) Key() string {
	return g.waypointSymbol + "|" + g.symbol + "|" + string(g.role)
}
