package helpers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// Call names recorded by MockAPIClient and accepted by FailNext
const (
	CallGetAgent      = "get_agent"
	CallGetShip       = "get_ship"
	CallListShips     = "list_ships"
	CallGetCooldown   = "get_cooldown"
	CallGetSystem     = "get_system"
	CallListWaypoints = "list_waypoints"
	CallGetWaypoint   = "get_waypoint"
	CallGetMarket     = "get_market"
	CallGetShipyard   = "get_shipyard"
	CallListContracts = "list_contracts"
	CallOrbit         = "orbit"
	CallDock          = "dock"
	CallFlightMode    = "set_flight_mode"
	CallNavigate      = "navigate"
	CallRefuel        = "refuel"
	CallPurchase      = "purchase"
	CallSell          = "sell"
	CallJettison      = "jettison"
	CallExtract       = "extract"
	CallSiphon        = "siphon"
)

// Upstream error codes the mock answers with
const (
	CodeShipNotInOrbit    = 4236
	CodeShipNotDocked     = 4244
	CodeInsufficientFuel  = 4203
	CodeCooldown          = 4000
	CodeCargoFull         = 4228
	CodeTradeVolume       = 4604
	CodeInsufficientFunds = 4600
	CodeUnknownWaypoint   = 4202
	CodeNotTraded         = 4602
)

// MockAPIClient is an in-memory SpaceTraders server for tests. It keeps the
// authoritative ship state, applies the game rules the client relies on and
// answers every mutation with the payload blocks the real server sends.
type MockAPIClient struct {
	mu sync.Mutex

	clock shared.Clock
	agent *player.Agent

	ships     map[string]*navigation.Ship
	waypoints map[string]*shared.Waypoint
	systems   map[string]*system.System
	markets   map[string]*market.Market
	shipyards map[string]*shipyard.Shipyard
	contracts []*contract.Contract
	yields    map[string]domainPorts.Yield

	// Call tracking
	calls []string

	// Error injection
	failures map[string]*domainPorts.RemoteFailure
	errs     map[string]error

	FuelPricePerUnit int
	ExtractCooldown  time.Duration

	seq int
}

// NewMockAPIClient creates a mock server driven by clock
func NewMockAPIClient(clock shared.Clock) *MockAPIClient {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	agent, _ := player.NewAgent("account-1", "AGENT", "X1-TEST-A1", "COSMIC", 100000, 0)
	return &MockAPIClient{
		clock:            clock,
		agent:            agent,
		ships:            make(map[string]*navigation.Ship),
		waypoints:        make(map[string]*shared.Waypoint),
		systems:          make(map[string]*system.System),
		markets:          make(map[string]*market.Market),
		shipyards:        make(map[string]*shipyard.Shipyard),
		yields:           make(map[string]domainPorts.Yield),
		failures:         make(map[string]*domainPorts.RemoteFailure),
		errs:             make(map[string]error),
		FuelPricePerUnit: 72,
		ExtractCooldown:  70 * time.Second,
	}
}

// Setup

// AddShip stores the server-side copy of ship
func (m *MockAPIClient) AddShip(ship *navigation.Ship) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ships[ship.Symbol()] = CopyShip(ship)
	m.agent.ShipCount = len(m.ships)
}

// AddWaypoint adds a waypoint, creating its system on first sight
func (m *MockAPIClient) AddWaypoint(waypoints ...*shared.Waypoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wp := range waypoints {
		copied := *wp
		copied.Traits = append([]string(nil), wp.Traits...)
		m.waypoints[wp.Symbol] = &copied
		if _, ok := m.systems[wp.SystemSymbol]; !ok {
			m.systems[wp.SystemSymbol] = &system.System{Symbol: wp.SystemSymbol, Type: "RED_STAR"}
		}
	}
}

// SetMarket installs the market served at its waypoint
func (m *MockAPIClient) SetMarket(mkt *market.Market) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markets[mkt.WaypointSymbol()] = mkt
}

// SetShipyard installs a shipyard
func (m *MockAPIClient) SetShipyard(s *shipyard.Shipyard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shipyards[s.WaypointSymbol] = s
}

// SetContracts replaces the agent's contracts
func (m *MockAPIClient) SetContracts(contracts ...*contract.Contract) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts = contracts
}

// SetYield sets what every extraction of ship produces
func (m *MockAPIClient) SetYield(shipSymbol, tradeSymbol string, units int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.yields[shipSymbol] = domainPorts.Yield{Symbol: tradeSymbol, Units: units}
}

// SetCredits sets the agent balance
func (m *MockAPIClient) SetCredits(credits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agent.Credits = credits
}

// FailNext makes the next call of action answer with failure
func (m *MockAPIClient) FailNext(action string, failure *domainPorts.RemoteFailure) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[action] = failure
}

// ErrorNext makes the next call of action fail at the transport level
func (m *MockAPIClient) ErrorNext(action string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[action] = err
}

// Inspection

// Calls returns every call in order
func (m *MockAPIClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how often action was called
func (m *MockAPIClient) CallCount(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c == action {
			count++
		}
	}
	return count
}

// ServerShip returns a copy of the authoritative ship state
func (m *MockAPIClient) ServerShip(symbol string) *navigation.Ship {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CopyShip(m.ships[symbol])
}

// Credits returns the authoritative agent balance
func (m *MockAPIClient) Credits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agent.Credits
}

// begin records the call and returns an injected transport error or
// rejection. Callers hold m.mu.
func (m *MockAPIClient) begin(action string) (*domainPorts.RemoteFailure, error) {
	m.calls = append(m.calls, action)
	if err, ok := m.errs[action]; ok {
		delete(m.errs, action)
		return nil, err
	}
	if failure, ok := m.failures[action]; ok {
		delete(m.failures, action)
		return failure, nil
	}
	return nil, nil
}

func (m *MockAPIClient) ship(symbol string) (*navigation.Ship, error) {
	ship, ok := m.ships[symbol]
	if !ok {
		return nil, fmt.Errorf("ship not found: %s", symbol)
	}
	ship.ResolveArrival(m.clock.Now())
	return ship, nil
}

// now returns a strictly increasing timestamp so consecutive transactions
// never share a natural key
func (m *MockAPIClient) now() time.Time {
	m.seq++
	return m.clock.Now().Add(time.Duration(m.seq) * time.Millisecond)
}

func reject(code int, format string, args ...interface{}) *domainPorts.ActionPayload {
	return &domainPorts.ActionPayload{Failure: &domainPorts.RemoteFailure{Code: code, Message: fmt.Sprintf(format, args...)}}
}

func navOf(ship *navigation.Ship) *domainPorts.NavSnapshot {
	var route *navigation.Route
	if r := ship.Route(); r != nil {
		copied := *r
		route = &copied
	}
	return &domainPorts.NavSnapshot{
		Status:         ship.NavStatus(),
		FlightMode:     ship.FlightMode(),
		SystemSymbol:   ship.SystemSymbol(),
		WaypointSymbol: ship.WaypointSymbol(),
		Route:          route,
	}
}

func (m *MockAPIClient) balance() *domainPorts.AgentBalance {
	return &domainPorts.AgentBalance{Symbol: m.agent.Symbol, Credits: m.agent.Credits, ShipCount: m.agent.ShipCount}
}

func cargoOf(ship *navigation.Ship) *shared.Cargo {
	cargo, _ := shared.NewCargo(ship.Cargo().Capacity, ship.Cargo().Inventory)
	return cargo
}

func addUnits(ship *navigation.Ship, tradeSymbol string, delta int) error {
	cargo := ship.Cargo()
	items := make([]*shared.CargoItem, 0, len(cargo.Inventory)+1)
	found := false
	for _, item := range cargo.Inventory {
		copied := *item
		if copied.Symbol == tradeSymbol {
			copied.Units += delta
			found = true
		}
		items = append(items, &copied)
	}
	if !found {
		items = append(items, &shared.CargoItem{Symbol: tradeSymbol, Name: tradeSymbol, Units: delta})
	}
	next, err := shared.NewCargo(cargo.Capacity, items)
	if err != nil {
		return err
	}
	ship.ApplyCargo(next)
	return nil
}

// Reads

func (m *MockAPIClient) GetAgent(ctx context.Context) (*player.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetAgent); err != nil {
		return nil, err
	}
	copied := *m.agent
	return &copied, nil
}

func (m *MockAPIClient) GetShip(ctx context.Context, symbol string) (*navigation.Ship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetShip); err != nil {
		return nil, err
	}
	ship, err := m.ship(symbol)
	if err != nil {
		return nil, err
	}
	return CopyShip(ship), nil
}

func (m *MockAPIClient) ListShips(ctx context.Context) ([]*navigation.Ship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallListShips); err != nil {
		return nil, err
	}
	ships := make([]*navigation.Ship, 0, len(m.ships))
	for symbol := range m.ships {
		ship, _ := m.ship(symbol)
		ships = append(ships, CopyShip(ship))
	}
	return ships, nil
}

func (m *MockAPIClient) GetCooldown(ctx context.Context, shipSymbol string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetCooldown); err != nil {
		return nil, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if !ship.InCooldown(m.clock.Now()) {
		return nil, nil
	}
	expiration := *ship.CooldownExpiration()
	return &expiration, nil
}

func (m *MockAPIClient) GetSystem(ctx context.Context, symbol string) (*system.System, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetSystem); err != nil {
		return nil, err
	}
	s, ok := m.systems[symbol]
	if !ok {
		return nil, fmt.Errorf("system not found: %s", symbol)
	}
	copied := *s
	return &copied, nil
}

func (m *MockAPIClient) ListWaypoints(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallListWaypoints); err != nil {
		return nil, err
	}
	var waypoints []*shared.Waypoint
	for _, wp := range m.waypoints {
		if wp.SystemSymbol == systemSymbol {
			copied := *wp
			waypoints = append(waypoints, &copied)
		}
	}
	return waypoints, nil
}

func (m *MockAPIClient) GetWaypoint(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetWaypoint); err != nil {
		return nil, err
	}
	wp, ok := m.waypoints[symbol]
	if !ok {
		return nil, fmt.Errorf("waypoint not found: %s", symbol)
	}
	copied := *wp
	return &copied, nil
}

func (m *MockAPIClient) GetMarket(ctx context.Context, waypointSymbol string) (*market.Market, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetMarket); err != nil {
		return nil, err
	}
	mkt, ok := m.markets[waypointSymbol]
	if !ok {
		return nil, fmt.Errorf("market not found: %s", waypointSymbol)
	}
	return mkt, nil
}

func (m *MockAPIClient) GetShipyard(ctx context.Context, waypointSymbol string) (*shipyard.Shipyard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallGetShipyard); err != nil {
		return nil, err
	}
	s, ok := m.shipyards[waypointSymbol]
	if !ok {
		return nil, fmt.Errorf("shipyard not found: %s", waypointSymbol)
	}
	copied := *s
	return &copied, nil
}

func (m *MockAPIClient) ListContracts(ctx context.Context) ([]*contract.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.begin(CallListContracts); err != nil {
		return nil, err
	}
	return append([]*contract.Contract(nil), m.contracts...), nil
}

// Mutations

func (m *MockAPIClient) OrbitShip(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallOrbit); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if ship.IsInTransit() {
		return reject(4214, "Ship is currently in-transit"), nil
	}
	_ = ship.ApplyNav(navigation.NavStatusInOrbit, ship.FlightMode(), "", "", nil)
	return &domainPorts.ActionPayload{Nav: navOf(ship)}, nil
}

func (m *MockAPIClient) DockShip(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallDock); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if ship.IsInTransit() {
		return reject(4214, "Ship is currently in-transit"), nil
	}
	_ = ship.ApplyNav(navigation.NavStatusDocked, ship.FlightMode(), "", "", nil)
	return &domainPorts.ActionPayload{Nav: navOf(ship)}, nil
}

func (m *MockAPIClient) SetFlightMode(ctx context.Context, shipSymbol string, mode shared.FlightMode) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallFlightMode); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if err := ship.SetFlightMode(mode); err != nil {
		return reject(4214, "%s", err.Error()), nil
	}
	return &domainPorts.ActionPayload{Nav: navOf(ship)}, nil
}

func (m *MockAPIClient) NavigateShip(ctx context.Context, shipSymbol, destination string) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallNavigate); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if !ship.IsInOrbit() {
		return reject(CodeShipNotInOrbit, "Ship action requires ship to be in orbit"), nil
	}
	origin, ok := m.waypoints[ship.WaypointSymbol()]
	if !ok {
		return reject(CodeUnknownWaypoint, "Waypoint %s not found", ship.WaypointSymbol()), nil
	}
	target, ok := m.waypoints[destination]
	if !ok {
		return reject(CodeUnknownWaypoint, "Waypoint %s not found", destination), nil
	}

	distance := origin.DistanceTo(target)
	cost, err := shared.FuelCost(distance, ship.FlightMode())
	if err != nil {
		return nil, err
	}
	if !ship.Fuel().CanCover(cost) {
		return reject(CodeInsufficientFuel, "Navigate request failed. Ship requires %d more fuel for navigation.", cost-ship.Fuel().Current), nil
	}
	seconds, applicable, err := shared.TravelTime(distance, ship.EngineSpeed(), ship.FlightMode())
	if err != nil {
		return nil, err
	}
	if !applicable {
		seconds = 0
	}

	now := m.clock.Now()
	route := &navigation.Route{
		Origin:      ship.WaypointSymbol(),
		Destination: destination,
		Departure:   now,
		Arrival:     now.Add(time.Duration(seconds) * time.Second),
	}
	if err := ship.ApplyNav(navigation.NavStatusInTransit, ship.FlightMode(), target.SystemSymbol, destination, route); err != nil {
		return nil, err
	}
	ship.ApplyFuel(ship.Fuel().Consume(cost))

	fuel := *ship.Fuel()
	return &domainPorts.ActionPayload{Nav: navOf(ship), Fuel: &fuel}, nil
}

func (m *MockAPIClient) RefuelShip(ctx context.Context, shipSymbol string, units int, fromCargo bool) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallRefuel); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if !ship.IsDocked() {
		return reject(CodeShipNotDocked, "Ship action requires ship to be docked"), nil
	}
	if units <= 0 || units > ship.Fuel().Missing() {
		units = ship.Fuel().Missing()
	}
	total := units * m.FuelPricePerUnit
	if fromCargo {
		if err := addUnits(ship, "FUEL", -units); err != nil {
			return reject(4219, "Not enough FUEL in cargo"), nil
		}
		total = 0
	} else if total > m.agent.Credits {
		return reject(CodeInsufficientFunds, "Agent has insufficient funds"), nil
	}
	m.agent.Credits -= total

	ship.ApplyFuel(&shared.Fuel{Current: ship.Fuel().Current + units, Capacity: ship.Fuel().Capacity})
	fuel := *ship.Fuel()
	return &domainPorts.ActionPayload{
		Fuel:  &fuel,
		Cargo: cargoOf(ship),
		Agent: m.balance(),
		Transaction: &market.Transaction{
			WaypointSymbol: ship.WaypointSymbol(),
			ShipSymbol:     shipSymbol,
			TradeSymbol:    "FUEL",
			Type:           market.TransactionPurchase,
			Units:          units,
			PricePerUnit:   m.FuelPricePerUnit,
			TotalPrice:     total,
			Timestamp:      m.now(),
		},
	}, nil
}

func (m *MockAPIClient) PurchaseCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallPurchase); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	good, failure := m.tradedGood(ship, tradeSymbol, market.RoleExport)
	if failure != nil {
		return failure, nil
	}
	if good.TradeVolume() > 0 && units > good.TradeVolume() {
		return reject(CodeTradeVolume, "Units exceed trade volume %d", good.TradeVolume()), nil
	}
	if units > ship.Cargo().AvailableCapacity() {
		return reject(CodeCargoFull, "Ship cargo hold has insufficient space"), nil
	}
	total := units * good.PurchasePrice()
	if total > m.agent.Credits {
		return reject(CodeInsufficientFunds, "Agent has insufficient funds"), nil
	}
	if err := addUnits(ship, tradeSymbol, units); err != nil {
		return nil, err
	}
	m.agent.Credits -= total

	return &domainPorts.ActionPayload{
		Cargo: cargoOf(ship),
		Agent: m.balance(),
		Transaction: &market.Transaction{
			WaypointSymbol: ship.WaypointSymbol(),
			ShipSymbol:     shipSymbol,
			TradeSymbol:    tradeSymbol,
			Type:           market.TransactionPurchase,
			Units:          units,
			PricePerUnit:   good.PurchasePrice(),
			TotalPrice:     total,
			Timestamp:      m.now(),
		},
	}, nil
}

func (m *MockAPIClient) SellCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallSell); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	good, failure := m.tradedGood(ship, tradeSymbol, market.RoleImport)
	if failure != nil {
		return failure, nil
	}
	if good.TradeVolume() > 0 && units > good.TradeVolume() {
		return reject(CodeTradeVolume, "Units exceed trade volume %d", good.TradeVolume()), nil
	}
	if ship.Cargo().GetItemUnits(tradeSymbol) < units {
		return reject(4219, "Ship does not have %d units of %s", units, tradeSymbol), nil
	}
	if err := addUnits(ship, tradeSymbol, -units); err != nil {
		return nil, err
	}
	total := units * good.SellPrice()
	m.agent.Credits += total

	return &domainPorts.ActionPayload{
		Cargo: cargoOf(ship),
		Agent: m.balance(),
		Transaction: &market.Transaction{
			WaypointSymbol: ship.WaypointSymbol(),
			ShipSymbol:     shipSymbol,
			TradeSymbol:    tradeSymbol,
			Type:           market.TransactionSell,
			Units:          units,
			PricePerUnit:   good.SellPrice(),
			TotalPrice:     total,
			Timestamp:      m.now(),
		},
	}, nil
}

// tradedGood finds the priced good at the ship's market, preferring role
func (m *MockAPIClient) tradedGood(ship *navigation.Ship, tradeSymbol string, role market.Role) (*market.MarketTradeGood, *domainPorts.ActionPayload) {
	if !ship.IsDocked() {
		return nil, reject(CodeShipNotDocked, "Ship action requires ship to be docked")
	}
	mkt, ok := m.markets[ship.WaypointSymbol()]
	if !ok {
		return nil, reject(CodeNotTraded, "No market at %s", ship.WaypointSymbol())
	}
	good := mkt.FindGood(tradeSymbol, role)
	if good == nil {
		good = mkt.FindAnyRole(tradeSymbol)
	}
	if good == nil {
		return nil, reject(CodeNotTraded, "Market %s does not trade %s", ship.WaypointSymbol(), tradeSymbol)
	}
	return good, nil
}

func (m *MockAPIClient) JettisonCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(CallJettison); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	if ship.Cargo().GetItemUnits(tradeSymbol) < units {
		return reject(4219, "Ship does not have %d units of %s", units, tradeSymbol), nil
	}
	if err := addUnits(ship, tradeSymbol, -units); err != nil {
		return nil, err
	}
	return &domainPorts.ActionPayload{Cargo: cargoOf(ship)}, nil
}

func (m *MockAPIClient) ExtractResources(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	return m.harvest(CallExtract, shipSymbol, domainPorts.Yield{Symbol: "IRON_ORE", Units: 5})
}

func (m *MockAPIClient) SiphonResources(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	return m.harvest(CallSiphon, shipSymbol, domainPorts.Yield{Symbol: "HYDROCARBON", Units: 5})
}

func (m *MockAPIClient) harvest(action, shipSymbol string, fallback domainPorts.Yield) (*domainPorts.ActionPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if failure, err := m.begin(action); err != nil || failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, err
	}
	ship, err := m.ship(shipSymbol)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	if !ship.IsInOrbit() {
		return reject(CodeShipNotInOrbit, "Ship action requires ship to be in orbit"), nil
	}
	if ship.InCooldown(now) {
		return reject(CodeCooldown, "Ship action is still on cooldown for %d second(s)", int(ship.CooldownRemaining(now).Seconds())), nil
	}

	yield, ok := m.yields[shipSymbol]
	if !ok {
		yield = fallback
	}
	if free := ship.Cargo().AvailableCapacity(); yield.Units > free {
		yield.Units = free
	}
	if yield.Units == 0 {
		return reject(CodeCargoFull, "Ship cargo hold is full"), nil
	}
	if err := addUnits(ship, yield.Symbol, yield.Units); err != nil {
		return nil, err
	}
	expiration := now.Add(m.ExtractCooldown)
	ship.ApplyCooldown(&expiration)

	return &domainPorts.ActionPayload{
		Cargo:    cargoOf(ship),
		Cooldown: &expiration,
		Yield:    &yield,
	}, nil
}

var _ domainPorts.APIClient = (*MockAPIClient)(nil)
