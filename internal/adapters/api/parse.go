package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

var validate = validator.New()

// decode unmarshals raw into dto and checks its validate tags. A payload
// missing a required field is an error, never a partially filled entity.
func decode(raw json.RawMessage, dto interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("payload has no data")
	}
	if err := json.Unmarshal(raw, dto); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if err := validate.Struct(dto); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func toAgent(dto *agentDTO) (*player.Agent, error) {
	return player.NewAgent(dto.AccountID, dto.Symbol, dto.Headquarters, dto.StartingFaction, dto.Credits, dto.ShipCount)
}

func toNav(dto *shipNavDTO) (*domainPorts.NavSnapshot, error) {
	status, err := navigation.ParseNavStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	mode, err := shared.ParseFlightMode(dto.FlightMode)
	if err != nil {
		return nil, err
	}
	nav := &domainPorts.NavSnapshot{
		Status:         status,
		FlightMode:     mode,
		SystemSymbol:   dto.SystemSymbol,
		WaypointSymbol: dto.WaypointSymbol,
	}
	if nav.SystemSymbol == "" {
		nav.SystemSymbol = shared.ExtractSystemSymbol(dto.WaypointSymbol)
	}
	// A route is meaningful only while travelling; the upstream keeps the
	// last one around after arrival
	if dto.Route != nil && status == navigation.NavStatusInTransit {
		nav.Route = &navigation.Route{
			Origin:      dto.Route.Origin.Symbol,
			Destination: dto.Route.Destination.Symbol,
			Departure:   dto.Route.DepartureTime.UTC(),
			Arrival:     dto.Route.Arrival.UTC(),
		}
	}
	return nav, nil
}

func toFuel(dto *fuelDTO) (*shared.Fuel, error) {
	return shared.NewFuel(dto.Current, dto.Capacity)
}

func toCargo(dto *cargoDTO) (*shared.Cargo, error) {
	items := make([]*shared.CargoItem, 0, len(dto.Inventory))
	for _, item := range dto.Inventory {
		converted, err := shared.NewCargoItem(item.Symbol, item.Name, item.Description, item.Units)
		if err != nil {
			return nil, err
		}
		items = append(items, converted)
	}
	return shared.NewCargo(dto.Capacity, items)
}

func symbols(list []symbolDTO) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.Symbol)
	}
	return out
}

func toShip(dto *shipDTO) (*navigation.Ship, error) {
	nav, err := toNav(dto.Nav)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", dto.Symbol, err)
	}
	fuel, err := toFuel(dto.Fuel)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", dto.Symbol, err)
	}
	cargo, err := toCargo(dto.Cargo)
	if err != nil {
		return nil, fmt.Errorf("ship %s: %w", dto.Symbol, err)
	}

	var cooldown *time.Time
	if dto.Cooldown != nil && dto.Cooldown.Expiration != nil {
		expiration := dto.Cooldown.Expiration.UTC()
		cooldown = &expiration
	}

	return navigation.ReconstructShip(navigation.ShipState{
		Symbol:             dto.Symbol,
		SystemSymbol:       nav.SystemSymbol,
		WaypointSymbol:     nav.WaypointSymbol,
		NavStatus:          nav.Status,
		FlightMode:         nav.FlightMode,
		Route:              nav.Route,
		Fuel:               fuel,
		Cargo:              cargo,
		EngineSpeed:        dto.Engine.Speed,
		FrameSymbol:        dto.Frame.Symbol,
		Role:               dto.Registration.Role,
		Modules:            symbols(dto.Modules),
		Mounts:             symbols(dto.Mounts),
		CooldownExpiration: cooldown,
	})
}

func toSystem(dto *systemDTO) *system.System {
	return &system.System{
		Symbol:       dto.Symbol,
		SectorSymbol: dto.SectorSymbol,
		Type:         dto.Type,
		X:            dto.X,
		Y:            dto.Y,
	}
}

func toWaypoint(dto *waypointDTO) (*shared.Waypoint, error) {
	wp, err := shared.NewWaypoint(dto.Symbol, dto.X, dto.Y)
	if err != nil {
		return nil, err
	}
	if dto.SystemSymbol != "" {
		wp.SystemSymbol = dto.SystemSymbol
	}
	wp.Type = dto.Type
	wp.Orbits = dto.Orbits
	wp.Traits = symbols(dto.Traits)
	wp.IsUnderConstruction = dto.IsUnderConstruction
	return wp, nil
}

func toCatalog(list []tradeGoodDTO) ([]market.TradeGood, error) {
	goods := make([]market.TradeGood, 0, len(list))
	for _, g := range list {
		entry, err := market.NewCatalogEntry(g.Symbol, g.Name, g.Description)
		if err != nil {
			return nil, err
		}
		goods = append(goods, entry)
	}
	return goods, nil
}

func toTransaction(dto *transactionDTO) (*market.Transaction, error) {
	tx := &market.Transaction{
		WaypointSymbol: dto.WaypointSymbol,
		ShipSymbol:     dto.ShipSymbol,
		TradeSymbol:    dto.TradeSymbol,
		Type:           market.TransactionType(dto.Type),
		Units:          dto.Units,
		PricePerUnit:   dto.PricePerUnit,
		TotalPrice:     dto.TotalPrice,
		Timestamp:      dto.Timestamp.UTC(),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

func toMarket(dto *marketDTO, observed time.Time) (*market.Market, error) {
	exports, err := toCatalog(dto.Exports)
	if err != nil {
		return nil, err
	}
	imports, err := toCatalog(dto.Imports)
	if err != nil {
		return nil, err
	}
	exchange, err := toCatalog(dto.Exchange)
	if err != nil {
		return nil, err
	}

	goods := make([]*market.MarketTradeGood, 0, len(dto.TradeGoods))
	for _, g := range dto.TradeGoods {
		good, err := market.NewMarketTradeGood(
			dto.Symbol, g.Symbol, market.Role(g.Type), g.Supply, g.Activity,
			g.PurchasePrice, g.SellPrice, g.TradeVolume,
		)
		if err != nil {
			return nil, fmt.Errorf("market %s good %s: %w", dto.Symbol, g.Symbol, err)
		}
		goods = append(goods, good.WithUpdatedAt(observed))
	}

	transactions := make([]*market.Transaction, 0, len(dto.Transactions))
	for i := range dto.Transactions {
		tx, err := toTransaction(&dto.Transactions[i])
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", dto.Symbol, err)
		}
		transactions = append(transactions, tx)
	}

	return market.NewMarket(dto.Symbol, exports, imports, exchange, goods, transactions, observed)
}

func toShipyard(dto *shipyardDTO) *shipyard.Shipyard {
	types := make([]string, 0, len(dto.ShipTypes))
	for _, t := range dto.ShipTypes {
		types = append(types, t.Type)
	}
	return &shipyard.Shipyard{
		WaypointSymbol:  dto.Symbol,
		ShipTypes:       types,
		ModificationFee: dto.ModificationsFee,
	}
}

func toContract(dto *contractDTO) (*contract.Contract, error) {
	deliver := make([]contract.DeliverGood, 0, len(dto.Terms.Deliver))
	for _, d := range dto.Terms.Deliver {
		deliver = append(deliver, contract.DeliverGood{
			TradeSymbol:       d.TradeSymbol,
			DestinationSymbol: d.DestinationSymbol,
			UnitsRequired:     d.UnitsRequired,
			UnitsFulfilled:    d.UnitsFulfilled,
		})
	}
	c := &contract.Contract{
		ID:            dto.ID,
		FactionSymbol: dto.FactionSymbol,
		Type:          dto.Type,
		Terms: contract.Terms{
			Deadline: dto.Terms.Deadline.UTC(),
			Payment: contract.Payment{
				OnAccepted:  dto.Terms.Payment.OnAccepted,
				OnFulfilled: dto.Terms.Payment.OnFulfilled,
			},
			Deliver: deliver,
		},
		Accepted:         dto.Accepted,
		Fulfilled:        dto.Fulfilled,
		Expiration:       dto.Expiration.UTC(),
		DeadlineToAccept: dto.DeadlineToAccept.UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// toPayload converts the data object of a mutation into an ActionPayload
func toPayload(dto *actionDTO) (*domainPorts.ActionPayload, error) {
	payload := &domainPorts.ActionPayload{}
	var err error

	if dto.Nav != nil {
		if payload.Nav, err = toNav(dto.Nav); err != nil {
			return nil, err
		}
	}
	if dto.Fuel != nil {
		if payload.Fuel, err = toFuel(dto.Fuel); err != nil {
			return nil, err
		}
	}
	if dto.Cargo != nil {
		if payload.Cargo, err = toCargo(dto.Cargo); err != nil {
			return nil, err
		}
	}
	if dto.Cooldown != nil {
		if dto.Cooldown.Expiration != nil && dto.Cooldown.RemainingSeconds > 0 {
			expiration := dto.Cooldown.Expiration.UTC()
			payload.Cooldown = &expiration
		} else {
			payload.CooldownCleared = true
		}
	}
	if dto.Agent != nil {
		payload.Agent = &domainPorts.AgentBalance{
			Symbol:    dto.Agent.Symbol,
			Credits:   dto.Agent.Credits,
			ShipCount: dto.Agent.ShipCount,
		}
	}
	if dto.Transaction != nil {
		if payload.Transaction, err = toTransaction(dto.Transaction); err != nil {
			return nil, err
		}
	}
	harvest := dto.Extraction
	if harvest == nil {
		harvest = dto.Siphon
	}
	if harvest != nil {
		payload.Yield = &domainPorts.Yield{Symbol: harvest.Yield.Symbol, Units: harvest.Yield.Units}
	}
	return payload, nil
}
