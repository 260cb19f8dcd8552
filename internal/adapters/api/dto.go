package api

import (
	"encoding/json"
	"time"
)

// Wire DTOs. Field names follow the upstream JSON exactly. validate tags
// mark what the parse boundary refuses to do without.

type pageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *pageMeta       `json:"meta,omitempty"`
}

type agentDTO struct {
	AccountID       string `json:"accountId"`
	Symbol          string `json:"symbol" validate:"required"`
	Headquarters    string `json:"headquarters"`
	Credits         int    `json:"credits"`
	StartingFaction string `json:"startingFaction"`
	ShipCount       int    `json:"shipCount"`
}

type symbolDTO struct {
	Symbol string `json:"symbol" validate:"required"`
}

type routeDTO struct {
	Origin        symbolDTO `json:"origin"`
	Destination   symbolDTO `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	Arrival       time.Time `json:"arrival" validate:"required"`
}

type shipNavDTO struct {
	SystemSymbol   string    `json:"systemSymbol"`
	WaypointSymbol string    `json:"waypointSymbol" validate:"required"`
	Route          *routeDTO `json:"route,omitempty"`
	Status         string    `json:"status" validate:"required,oneof=DOCKED IN_ORBIT IN_TRANSIT"`
	FlightMode     string    `json:"flightMode" validate:"required,oneof=CRUISE BURN DRIFT STEALTH"`
}

type fuelDTO struct {
	Current  int `json:"current" validate:"gte=0"`
	Capacity int `json:"capacity" validate:"gte=0"`
}

type cargoItemDTO struct {
	Symbol      string `json:"symbol" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       int    `json:"units" validate:"gte=0"`
}

type cargoDTO struct {
	Capacity  int            `json:"capacity" validate:"gte=0"`
	Units     int            `json:"units" validate:"gte=0"`
	Inventory []cargoItemDTO `json:"inventory" validate:"dive"`
}

type cooldownDTO struct {
	ShipSymbol       string     `json:"shipSymbol"`
	TotalSeconds     int        `json:"totalSeconds"`
	RemainingSeconds int        `json:"remainingSeconds"`
	Expiration       *time.Time `json:"expiration,omitempty"`
}

type shipDTO struct {
	Symbol       string `json:"symbol" validate:"required"`
	Registration struct {
		Role string `json:"role"`
	} `json:"registration"`
	Nav   *shipNavDTO `json:"nav" validate:"required"`
	Frame struct {
		Symbol string `json:"symbol"`
	} `json:"frame"`
	Engine struct {
		Speed int `json:"speed"`
	} `json:"engine"`
	Modules  []symbolDTO  `json:"modules"`
	Mounts   []symbolDTO  `json:"mounts"`
	Cargo    *cargoDTO    `json:"cargo" validate:"required"`
	Fuel     *fuelDTO     `json:"fuel" validate:"required"`
	Cooldown *cooldownDTO `json:"cooldown,omitempty"`
}

type systemDTO struct {
	Symbol       string `json:"symbol" validate:"required"`
	SectorSymbol string `json:"sectorSymbol"`
	Type         string `json:"type"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
}

type waypointDTO struct {
	Symbol              string      `json:"symbol" validate:"required"`
	Type                string      `json:"type"`
	SystemSymbol        string      `json:"systemSymbol"`
	X                   int         `json:"x"`
	Y                   int         `json:"y"`
	Orbits              string      `json:"orbits,omitempty"`
	Traits              []symbolDTO `json:"traits" validate:"dive"`
	IsUnderConstruction bool        `json:"isUnderConstruction"`
}

type tradeGoodDTO struct {
	Symbol      string `json:"symbol" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type marketTradeGoodDTO struct {
	Symbol        string `json:"symbol" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=EXPORT IMPORT EXCHANGE"`
	TradeVolume   int    `json:"tradeVolume" validate:"gte=0"`
	Supply        string `json:"supply"`
	Activity      string `json:"activity,omitempty"`
	PurchasePrice int    `json:"purchasePrice" validate:"gte=0"`
	SellPrice     int    `json:"sellPrice" validate:"gte=0"`
}

type transactionDTO struct {
	WaypointSymbol string    `json:"waypointSymbol" validate:"required"`
	ShipSymbol     string    `json:"shipSymbol" validate:"required"`
	TradeSymbol    string    `json:"tradeSymbol" validate:"required"`
	Type           string    `json:"type" validate:"required,oneof=PURCHASE SELL"`
	Units          int       `json:"units" validate:"gte=0"`
	PricePerUnit   int       `json:"pricePerUnit" validate:"gte=0"`
	TotalPrice     int       `json:"totalPrice" validate:"gte=0"`
	Timestamp      time.Time `json:"timestamp" validate:"required"`
}

type marketDTO struct {
	Symbol       string               `json:"symbol" validate:"required"`
	Exports      []tradeGoodDTO       `json:"exports" validate:"dive"`
	Imports      []tradeGoodDTO       `json:"imports" validate:"dive"`
	Exchange     []tradeGoodDTO       `json:"exchange" validate:"dive"`
	Transactions []transactionDTO     `json:"transactions" validate:"dive"`
	TradeGoods   []marketTradeGoodDTO `json:"tradeGoods" validate:"dive"`
}

type shipyardDTO struct {
	Symbol    string `json:"symbol" validate:"required"`
	ShipTypes []struct {
		Type string `json:"type"`
	} `json:"shipTypes"`
	ModificationsFee int `json:"modificationsFee"`
}

type deliverDTO struct {
	TradeSymbol       string `json:"tradeSymbol" validate:"required"`
	DestinationSymbol string `json:"destinationSymbol" validate:"required"`
	UnitsRequired     int    `json:"unitsRequired"`
	UnitsFulfilled    int    `json:"unitsFulfilled"`
}

type contractDTO struct {
	ID            string `json:"id" validate:"required"`
	FactionSymbol string `json:"factionSymbol" validate:"required"`
	Type          string `json:"type"`
	Terms         struct {
		Deadline time.Time `json:"deadline"`
		Payment  struct {
			OnAccepted  int `json:"onAccepted"`
			OnFulfilled int `json:"onFulfilled"`
		} `json:"payment"`
		Deliver []deliverDTO `json:"deliver" validate:"dive"`
	} `json:"terms"`
	Accepted         bool      `json:"accepted"`
	Fulfilled        bool      `json:"fulfilled"`
	Expiration       time.Time `json:"expiration"`
	DeadlineToAccept time.Time `json:"deadlineToAccept"`
}

type yieldDTO struct {
	Symbol string `json:"symbol" validate:"required"`
	Units  int    `json:"units" validate:"gte=0"`
}

type harvestDTO struct {
	ShipSymbol string   `json:"shipSymbol"`
	Yield      yieldDTO `json:"yield"`
}

// actionDTO is the union of blocks a mutation's data object may carry
type actionDTO struct {
	Nav         *shipNavDTO     `json:"nav,omitempty"`
	Fuel        *fuelDTO        `json:"fuel,omitempty"`
	Cargo       *cargoDTO       `json:"cargo,omitempty"`
	Cooldown    *cooldownDTO    `json:"cooldown,omitempty"`
	Agent       *agentDTO       `json:"agent,omitempty"`
	Transaction *transactionDTO `json:"transaction,omitempty"`
	Extraction  *harvestDTO     `json:"extraction,omitempty"`
	Siphon      *harvestDTO     `json:"siphon,omitempty"`
}

// Request bodies

type navigateRequest struct {
	WaypointSymbol string `json:"waypointSymbol"`
}

type flightModeRequest struct {
	FlightMode string `json:"flightMode"`
}

type refuelRequest struct {
	Units     int  `json:"units,omitempty"`
	FromCargo bool `json:"fromCargo,omitempty"`
}

type cargoRequest struct {
	Symbol string `json:"symbol"`
	Units  int    `json:"units"`
}
