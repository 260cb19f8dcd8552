package persistence

import (
	"time"
)

// AgentModel represents the agents table
type AgentModel struct {
	Symbol          string    `gorm:"column:symbol;primaryKey"`
	AccountID       string    `gorm:"column:account_id"`
	Headquarters    string    `gorm:"column:headquarters"`
	Credits         int       `gorm:"column:credits;not null;default:0"`
	StartingFaction string    `gorm:"column:starting_faction"`
	ShipCount       int       `gorm:"column:ship_count;not null;default:0"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (AgentModel) TableName() string {
	return "agents"
}

// SystemModel represents the systems table
type SystemModel struct {
	Symbol       string `gorm:"column:symbol;primaryKey"`
	SectorSymbol string `gorm:"column:sector_symbol"`
	Type         string `gorm:"column:type"`
	X            int    `gorm:"column:x;not null"`
	Y            int    `gorm:"column:y;not null"`
}

func (SystemModel) TableName() string {
	return "systems"
}

// WaypointModel represents the waypoints table
type WaypointModel struct {
	WaypointSymbol      string `gorm:"column:waypoint_symbol;primaryKey"`
	SystemSymbol        string `gorm:"column:system_symbol;not null;index"`
	Type                string `gorm:"column:type"`
	X                   int    `gorm:"column:x;not null"`
	Y                   int    `gorm:"column:y;not null"`
	Orbits              string `gorm:"column:orbits"`
	Traits              string `gorm:"column:traits;type:text"` // JSON array as text
	IsUnderConstruction bool   `gorm:"column:is_under_construction;not null;default:false"`
	// Stub rows are created for waypoints first seen through a market or a
	// transaction; the next waypoint sync fills them in
	Stub     bool      `gorm:"column:stub;not null;default:false"`
	SyncedAt time.Time `gorm:"column:synced_at"`
}

func (WaypointModel) TableName() string {
	return "waypoints"
}

// TradeGoodModel represents the trade_goods catalog table
type TradeGoodModel struct {
	Symbol      string `gorm:"column:symbol;primaryKey"`
	Name        string `gorm:"column:name;not null"`
	Description string `gorm:"column:description;type:text"`
}

func (TradeGoodModel) TableName() string {
	return "trade_goods"
}

// MarketCatalogModel represents the market_catalog table: which goods a market
// imports, exports or exchanges, with or without a price
type MarketCatalogModel struct {
	WaypointSymbol string    `gorm:"column:waypoint_symbol;primaryKey"`
	TradeSymbol    string    `gorm:"column:trade_symbol;primaryKey"`
	Role           string    `gorm:"column:role;primaryKey"`
	ObservedAt     time.Time `gorm:"column:observed_at"`
}

func (MarketCatalogModel) TableName() string {
	return "market_catalog"
}

// MarketTradeGoodModel represents the market_trade_goods table
type MarketTradeGoodModel struct {
	WaypointSymbol string    `gorm:"column:waypoint_symbol;primaryKey"`
	TradeSymbol    string    `gorm:"column:trade_symbol;primaryKey"`
	Role           string    `gorm:"column:role;primaryKey"`
	SystemSymbol   string    `gorm:"column:system_symbol;not null;index"`
	Supply         string    `gorm:"column:supply"`
	Activity       string    `gorm:"column:activity"`
	PurchasePrice  int       `gorm:"column:purchase_price;not null"`
	SellPrice      int       `gorm:"column:sell_price;not null"`
	TradeVolume    int       `gorm:"column:trade_volume;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

func (MarketTradeGoodModel) TableName() string {
	return "market_trade_goods"
}

// TransactionModel represents the append-only transactions table
type TransactionModel struct {
	ID             int       `gorm:"column:id;primaryKey;autoIncrement"`
	NaturalKey     string    `gorm:"column:natural_key;uniqueIndex;not null"`
	WaypointSymbol string    `gorm:"column:waypoint_symbol;not null"`
	ShipSymbol     string    `gorm:"column:ship_symbol;not null;index"`
	TradeSymbol    string    `gorm:"column:trade_symbol;not null"`
	Type           string    `gorm:"column:type;not null"`
	Units          int       `gorm:"column:units;not null"`
	PricePerUnit   int       `gorm:"column:price_per_unit;not null"`
	TotalPrice     int       `gorm:"column:total_price;not null"`
	Timestamp      time.Time `gorm:"column:timestamp;not null;index"`
}

func (TransactionModel) TableName() string {
	return "transactions"
}

// ShipyardModel represents the shipyards table
type ShipyardModel struct {
	WaypointSymbol  string    `gorm:"column:waypoint_symbol;primaryKey"`
	ShipTypes       string    `gorm:"column:ship_types;type:text"` // JSON array as text
	ModificationFee int       `gorm:"column:modification_fee"`
	SyncedAt        time.Time `gorm:"column:synced_at"`
}

func (ShipyardModel) TableName() string {
	return "shipyards"
}

// ShipModel represents the ships table
type ShipModel struct {
	Symbol             string     `gorm:"column:symbol;primaryKey"`
	SystemSymbol       string     `gorm:"column:system_symbol;not null"`
	WaypointSymbol     string     `gorm:"column:waypoint_symbol;not null"`
	NavStatus          string     `gorm:"column:nav_status;not null"`
	FlightMode         string     `gorm:"column:flight_mode;not null"`
	RouteOrigin        string     `gorm:"column:route_origin"`
	RouteDestination   string     `gorm:"column:route_destination"`
	RouteDeparture     *time.Time `gorm:"column:route_departure"`
	RouteArrival       *time.Time `gorm:"column:route_arrival"`
	FuelCurrent        int        `gorm:"column:fuel_current;not null"`
	FuelCapacity       int        `gorm:"column:fuel_capacity;not null"`
	CargoCapacity      int        `gorm:"column:cargo_capacity;not null"`
	Cargo              string     `gorm:"column:cargo;type:text"` // JSON array as text
	EngineSpeed        int        `gorm:"column:engine_speed"`
	FrameSymbol        string     `gorm:"column:frame_symbol"`
	Role               string     `gorm:"column:role"`
	Modules            string     `gorm:"column:modules;type:text"` // JSON array as text
	Mounts             string     `gorm:"column:mounts;type:text"`  // JSON array as text
	CooldownExpiration *time.Time `gorm:"column:cooldown_expiration"`
	Behavior           string     `gorm:"column:behavior;not null;default:'NONE';index"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (ShipModel) TableName() string {
	return "ships"
}

// ContractModel represents the contracts table
type ContractModel struct {
	ID                 string    `gorm:"column:id;primaryKey;not null"`
	FactionSymbol      string    `gorm:"column:faction_symbol;not null"`
	Type               string    `gorm:"column:type;not null"`
	Accepted           bool      `gorm:"column:accepted;not null;default:false"`
	Fulfilled          bool      `gorm:"column:fulfilled;not null;default:false"`
	Deadline           time.Time `gorm:"column:deadline"`
	Expiration         time.Time `gorm:"column:expiration"`
	DeadlineToAccept   time.Time `gorm:"column:deadline_to_accept"`
	PaymentOnAccepted  int       `gorm:"column:payment_on_accepted;not null"`
	PaymentOnFulfilled int       `gorm:"column:payment_on_fulfilled;not null"`
	DeliveriesJSON     string    `gorm:"column:deliveries_json;type:text;not null"`
	LastUpdated        time.Time `gorm:"column:last_updated;not null"`
}

func (ContractModel) TableName() string {
	return "contracts"
}

// ContinuationModel represents the continuations table
type ContinuationModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ShipSymbol string    `gorm:"column:ship_symbol;not null;index"`
	Action     string    `gorm:"column:action;not null"`
	Params     string    `gorm:"column:params;type:text"` // JSON object as text
	DueAt      time.Time `gorm:"column:due_at;not null"`
	Status     string    `gorm:"column:status;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	LastError  string    `gorm:"column:last_error;type:text"`
}

func (ContinuationModel) TableName() string {
	return "continuations"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&AgentModel{},
		&SystemModel{},
		&WaypointModel{},
		&TradeGoodModel{},
		&MarketCatalogModel{},
		&MarketTradeGoodModel{},
		&TransactionModel{},
		&ShipyardModel{},
		&ShipModel{},
		&ContractModel{},
		&ContinuationModel{},
	}
}
