package types

import "github.com/ropable/spacetraders-api/internal/domain/trading"

// ExportArbitrageDTO is one export good of a market with its ranked destinations
type ExportArbitrageDTO struct {
	TradeSymbol  string                         `json:"tradeSymbol" yaml:"tradeSymbol"`
	SellPrice    int                            `json:"sellPrice" yaml:"sellPrice"`
	Supply       string                         `json:"supply,omitempty" yaml:"supply,omitempty"`
	Destinations []trading.ArbitrageDestination `json:"destinations" yaml:"destinations"`
}

// TradePairDTO is the flat form of a trade pair
type TradePairDTO struct {
	From          string  `json:"from" yaml:"from"`
	To            string  `json:"to" yaml:"to"`
	TradeSymbol   string  `json:"tradeSymbol" yaml:"tradeSymbol"`
	Distance      int     `json:"distance" yaml:"distance"`
	Spread        int     `json:"spread" yaml:"spread"`
	Efficiency    float64 `json:"efficiency" yaml:"efficiency"`
	HopProfit     int     `json:"hopProfit" yaml:"hopProfit"`
	PurchasePrice int     `json:"purchasePrice" yaml:"purchasePrice"`
	SellPrice     int     `json:"sellPrice" yaml:"sellPrice"`
}

// NewTradePairDTO flattens a pair
func NewTradePairDTO(p trading.TradePair) TradePairDTO {
	return TradePairDTO{
		From:          p.From(),
		To:            p.To(),
		TradeSymbol:   p.TradeSymbol(),
		Distance:      p.Distance,
		Spread:        p.Spread,
		Efficiency:    p.Efficiency,
		HopProfit:     p.HopProfit(),
		PurchasePrice: p.Export.PurchasePrice(),
		SellPrice:     p.Import.SellPrice(),
	}
}

// MarketGoodDTO is one priced trade good of a market
type MarketGoodDTO struct {
	TradeSymbol   string `json:"tradeSymbol" yaml:"tradeSymbol"`
	Role          string `json:"role" yaml:"role"`
	Supply        string `json:"supply,omitempty" yaml:"supply,omitempty"`
	Activity      string `json:"activity,omitempty" yaml:"activity,omitempty"`
	PurchasePrice int    `json:"purchasePrice" yaml:"purchasePrice"`
	SellPrice     int    `json:"sellPrice" yaml:"sellPrice"`
	TradeVolume   int    `json:"tradeVolume" yaml:"tradeVolume"`
	UpdatedAt     string `json:"updatedAt" yaml:"updatedAt"`
}

// MarketDTO is the flat form of a cached market
type MarketDTO struct {
	WaypointSymbol string          `json:"waypoint" yaml:"waypoint"`
	LastUpdated    string          `json:"lastUpdated" yaml:"lastUpdated"`
	Goods          []MarketGoodDTO `json:"goods" yaml:"goods"`
}
