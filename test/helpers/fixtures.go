package helpers

import (
	"sort"
	"testing"
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// ShipFixture describes a ship for tests. Zero values get sensible defaults:
// DOCKED, CRUISE (the zero FlightMode), engine speed 30, a full tank when FuelCapacity is unset.
type ShipFixture struct {
	Symbol        string
	Waypoint      string
	Status        navigation.NavStatus
	Mode          shared.FlightMode
	Fuel          int
	FuelCapacity  int
	CargoCapacity int
	Cargo         map[string]int
	EngineSpeed   int
	Cooldown      *time.Time
	Route         *navigation.Route
	Behavior      navigation.Behavior
}

// BuildShip turns a fixture into a validated ship entity
func BuildShip(f ShipFixture) (*navigation.Ship, error) {
	if f.Status == "" {
		f.Status = navigation.NavStatusDocked
	}
	if f.EngineSpeed == 0 {
		f.EngineSpeed = 30
	}
	if f.FuelCapacity == 0 {
		f.FuelCapacity = f.Fuel
	}

	fuel, err := shared.NewFuel(f.Fuel, f.FuelCapacity)
	if err != nil {
		return nil, err
	}
	cargo, err := BuildCargo(f.CargoCapacity, f.Cargo)
	if err != nil {
		return nil, err
	}

	return navigation.ReconstructShip(navigation.ShipState{
		Symbol:             f.Symbol,
		WaypointSymbol:     f.Waypoint,
		NavStatus:          f.Status,
		FlightMode:         f.Mode,
		Route:              f.Route,
		Fuel:               fuel,
		Cargo:              cargo,
		EngineSpeed:        f.EngineSpeed,
		FrameSymbol:        "FRAME_LIGHT_FREIGHTER",
		Role:               "HAULER",
		CooldownExpiration: f.Cooldown,
		Behavior:           f.Behavior,
	})
}

// MustShip builds a ship or fails the test
func MustShip(t testing.TB, f ShipFixture) *navigation.Ship {
	t.Helper()
	ship, err := BuildShip(f)
	if err != nil {
		t.Fatalf("failed to build ship fixture %s: %v", f.Symbol, err)
	}
	return ship
}

// BuildCargo creates a manifest from symbol -> units
func BuildCargo(capacity int, items map[string]int) (*shared.Cargo, error) {
	inventory := make([]*shared.CargoItem, 0, len(items))
	for symbol, units := range items {
		inventory = append(inventory, &shared.CargoItem{Symbol: symbol, Name: symbol, Units: units})
	}
	return shared.NewCargo(capacity, inventory)
}

// CopyShip returns an independent copy of ship, so a repository or a fake
// server never shares mutable state with the caller.
func CopyShip(ship *navigation.Ship) *navigation.Ship {
	if ship == nil {
		return nil
	}
	state := ship.State()
	if state.Fuel != nil {
		fuel := *state.Fuel
		state.Fuel = &fuel
	}
	if state.Cargo != nil {
		cargo, err := shared.NewCargo(state.Cargo.Capacity, state.Cargo.Inventory)
		if err == nil {
			state.Cargo = cargo
		}
	}
	if state.Route != nil {
		route := *state.Route
		state.Route = &route
	}
	if state.CooldownExpiration != nil {
		cd := *state.CooldownExpiration
		state.CooldownExpiration = &cd
	}
	state.Modules = append([]string(nil), state.Modules...)
	state.Mounts = append([]string(nil), state.Mounts...)

	copied, err := navigation.ReconstructShip(state)
	if err != nil {
		panic("copy of a valid ship failed validation: " + err.Error())
	}
	return copied
}

// Waypoint builds a waypoint with traits
func Waypoint(symbol string, x, y int, traits ...string) *shared.Waypoint {
	wp, err := shared.NewWaypoint(symbol, x, y)
	if err != nil {
		panic(err)
	}
	wp.Type = "PLANET"
	wp.Traits = append(wp.Traits, traits...)
	return wp
}

// GoodFixture is one priced trade good of a market
type GoodFixture struct {
	Symbol        string
	Role          market.Role
	PurchasePrice int
	SellPrice     int
	TradeVolume   int
	Supply        string
}

// BuildMarket creates a market at waypoint trading the given goods
func BuildMarket(waypoint string, observed time.Time, goods ...GoodFixture) *market.Market {
	var exports, imports, exchange []market.TradeGood
	priced := make([]*market.MarketTradeGood, 0, len(goods))

	sort.Slice(goods, func(i, j int) bool { return goods[i].Symbol < goods[j].Symbol })
	for _, g := range goods {
		entry, err := market.NewCatalogEntry(g.Symbol, "", "")
		if err != nil {
			panic(err)
		}
		switch g.Role {
		case market.RoleExport:
			exports = append(exports, entry)
		case market.RoleImport:
			imports = append(imports, entry)
		default:
			exchange = append(exchange, entry)
		}

		supply := g.Supply
		if supply == "" {
			supply = "MODERATE"
		}
		activity := "STRONG"
		if g.Role == market.RoleExchange {
			activity = ""
		}
		tg, err := market.NewMarketTradeGood(waypoint, g.Symbol, g.Role, supply, activity, g.PurchasePrice, g.SellPrice, g.TradeVolume)
		if err != nil {
			panic(err)
		}
		priced = append(priced, tg.WithUpdatedAt(observed))
	}

	m, err := market.NewMarket(waypoint, exports, imports, exchange, priced, nil, observed)
	if err != nil {
		panic(err)
	}
	return m
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
