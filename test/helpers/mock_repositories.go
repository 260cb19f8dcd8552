package helpers

import (
	"context"
	"sort"
	"sync"

	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// MockShipRepository is an in-memory implementation of ShipRepository for testing.
// Ships are stored as copies, so a test sees exactly what was saved.
type MockShipRepository struct {
	mu    sync.Mutex
	Ships map[string]*navigation.Ship // key: ship_symbol
	Saves int
}

// NewMockShipRepository creates a new mock ship repository
func NewMockShipRepository() *MockShipRepository {
	return &MockShipRepository{Ships: make(map[string]*navigation.Ship)}
}

func (m *MockShipRepository) FindBySymbol(ctx context.Context, symbol string) (*navigation.Ship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CopyShip(m.Ships[symbol]), nil
}

func (m *MockShipRepository) ListAll(ctx context.Context) ([]*navigation.Ship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*navigation.Ship) bool { return true }), nil
}

func (m *MockShipRepository) ListByBehavior(ctx context.Context, b navigation.Behavior) ([]*navigation.Ship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(s *navigation.Ship) bool { return s.Behavior() == b }), nil
}

func (m *MockShipRepository) Save(ctx context.Context, ship *navigation.Ship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ships[ship.Symbol()] = CopyShip(ship)
	m.Saves++
	return nil
}

func (m *MockShipRepository) sorted(keep func(*navigation.Ship) bool) []*navigation.Ship {
	ships := make([]*navigation.Ship, 0, len(m.Ships))
	for _, ship := range m.Ships {
		if keep(ship) {
			ships = append(ships, CopyShip(ship))
		}
	}
	sort.Slice(ships, func(i, j int) bool { return ships[i].Symbol() < ships[j].Symbol() })
	return ships
}

// MockMarketRepository is an in-memory market cache
type MockMarketRepository struct {
	mu         sync.Mutex
	Markets    map[string]*market.Market
	TradeGoods map[string]*market.MarketTradeGood // key: MarketTradeGood.Key()
	Catalog    map[string]market.TradeGood
}

// NewMockMarketRepository creates an empty market cache
func NewMockMarketRepository() *MockMarketRepository {
	return &MockMarketRepository{
		Markets:    make(map[string]*market.Market),
		TradeGoods: make(map[string]*market.MarketTradeGood),
		Catalog:    make(map[string]market.TradeGood),
	}
}

func (m *MockMarketRepository) Save(ctx context.Context, mkt *market.Market) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range mkt.Catalog() {
		if _, ok := m.Catalog[entry.Symbol]; !ok {
			m.Catalog[entry.Symbol] = entry
		}
	}
	for _, good := range mkt.TradeGoods() {
		m.TradeGoods[good.Key()] = good
	}
	m.Markets[mkt.WaypointSymbol()] = mkt
	return nil
}

func (m *MockMarketRepository) FindByWaypoint(ctx context.Context, waypointSymbol string) (*market.Market, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Markets[waypointSymbol], nil
}

func (m *MockMarketRepository) ListTradeGoods(ctx context.Context, filter market.TradeGoodFilter) ([]*market.MarketTradeGood, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var goods []*market.MarketTradeGood
	for _, good := range m.TradeGoods {
		if filter.SystemSymbol != "" && shared.ExtractSystemSymbol(good.WaypointSymbol()) != filter.SystemSymbol {
			continue
		}
		if filter.WaypointSymbol != "" && good.WaypointSymbol() != filter.WaypointSymbol {
			continue
		}
		if filter.TradeSymbol != "" && good.Symbol() != filter.TradeSymbol {
			continue
		}
		if filter.Role != "" && good.Role() != filter.Role {
			continue
		}
		goods = append(goods, good)
	}
	sort.Slice(goods, func(i, j int) bool { return goods[i].Key() < goods[j].Key() })
	return goods, nil
}

func (m *MockMarketRepository) ListExportMarkets(ctx context.Context, systemSymbol string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var symbols []string
	for symbol, mkt := range m.Markets {
		if shared.ExtractSystemSymbol(symbol) == systemSymbol && len(mkt.Exports()) > 0 {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (m *MockMarketRepository) EnsureCatalog(ctx context.Context, goods []market.TradeGood) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, good := range goods {
		if _, ok := m.Catalog[good.Symbol]; !ok {
			m.Catalog[good.Symbol] = good
		}
	}
	return nil
}

// MockTransactionRepository keeps transactions deduplicated by natural key
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions []*market.Transaction
	keys         map[string]bool
}

// NewMockTransactionRepository creates an empty transaction history
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{keys: make(map[string]bool)}
}

func (m *MockTransactionRepository) Record(ctx context.Context, tx *market.Transaction) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := tx.NaturalKey()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	copied := *tx
	m.Transactions = append(m.Transactions, &copied)
	return true, nil
}

func (m *MockTransactionRepository) ListByShip(ctx context.Context, shipSymbol string, limit int) ([]*market.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var txs []*market.Transaction
	for i := len(m.Transactions) - 1; i >= 0; i-- {
		if m.Transactions[i].ShipSymbol == shipSymbol {
			txs = append(txs, m.Transactions[i])
		}
		if limit > 0 && len(txs) == limit {
			break
		}
	}
	return txs, nil
}

// MockWaypointRepository caches systems and waypoints in memory
type MockWaypointRepository struct {
	mu        sync.Mutex
	Systems   map[string]*system.System
	Waypoints map[string]*shared.Waypoint
}

// NewMockWaypointRepository creates an empty waypoint cache
func NewMockWaypointRepository() *MockWaypointRepository {
	return &MockWaypointRepository{
		Systems:   make(map[string]*system.System),
		Waypoints: make(map[string]*shared.Waypoint),
	}
}

func (m *MockWaypointRepository) SaveSystem(ctx context.Context, s *system.System) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Systems[s.Symbol] = s
	return nil
}

func (m *MockWaypointRepository) FindSystem(ctx context.Context, symbol string) (*system.System, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Systems[symbol], nil
}

func (m *MockWaypointRepository) Save(ctx context.Context, waypoint *shared.Waypoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *waypoint
	copied.Traits = append([]string(nil), waypoint.Traits...)
	m.Waypoints[waypoint.Symbol] = &copied
	return nil
}

func (m *MockWaypointRepository) FindBySymbol(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Waypoints[symbol], nil
}

func (m *MockWaypointRepository) ListBySystem(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	return m.list(systemSymbol, ""), nil
}

func (m *MockWaypointRepository) ListByTrait(ctx context.Context, systemSymbol, trait string) ([]*shared.Waypoint, error) {
	return m.list(systemSymbol, trait), nil
}

func (m *MockWaypointRepository) list(systemSymbol, trait string) []*shared.Waypoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	var waypoints []*shared.Waypoint
	for _, wp := range m.Waypoints {
		if wp.SystemSymbol != systemSymbol {
			continue
		}
		if trait != "" && !wp.HasTrait(trait) {
			continue
		}
		waypoints = append(waypoints, wp)
	}
	sort.Slice(waypoints, func(i, j int) bool { return waypoints[i].Symbol < waypoints[j].Symbol })
	return waypoints
}

// MockAgentRepository stores agents by symbol
type MockAgentRepository struct {
	mu     sync.Mutex
	Agents map[string]*player.Agent
}

// NewMockAgentRepository creates an empty agent store
func NewMockAgentRepository() *MockAgentRepository {
	return &MockAgentRepository{Agents: make(map[string]*player.Agent)}
}

func (m *MockAgentRepository) FindBySymbol(ctx context.Context, symbol string) (*player.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.Agents[symbol]
	if !ok {
		return nil, nil
	}
	copied := *agent
	return &copied, nil
}

func (m *MockAgentRepository) Save(ctx context.Context, agent *player.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *agent
	m.Agents[agent.Symbol] = &copied
	return nil
}

// MockContractRepository stores contracts by ID
type MockContractRepository struct {
	mu        sync.Mutex
	Contracts map[string]*contract.Contract
}

// NewMockContractRepository creates an empty contract store
func NewMockContractRepository() *MockContractRepository {
	return &MockContractRepository{Contracts: make(map[string]*contract.Contract)}
}

func (m *MockContractRepository) Save(ctx context.Context, c *contract.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Contracts[c.ID] = c
	return nil
}

func (m *MockContractRepository) FindByID(ctx context.Context, id string) (*contract.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Contracts[id], nil
}

func (m *MockContractRepository) ListAll(ctx context.Context) ([]*contract.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	contracts := make([]*contract.Contract, 0, len(m.Contracts))
	for _, c := range m.Contracts {
		contracts = append(contracts, c)
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].ID < contracts[j].ID })
	return contracts, nil
}

// MockShipyardRepository stores shipyards by waypoint
type MockShipyardRepository struct {
	mu        sync.Mutex
	Shipyards map[string]*shipyard.Shipyard
}

// NewMockShipyardRepository creates an empty shipyard store
func NewMockShipyardRepository() *MockShipyardRepository {
	return &MockShipyardRepository{Shipyards: make(map[string]*shipyard.Shipyard)}
}

func (m *MockShipyardRepository) Save(ctx context.Context, s *shipyard.Shipyard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Shipyards[s.WaypointSymbol] = s
	return nil
}

func (m *MockShipyardRepository) FindByWaypoint(ctx context.Context, waypointSymbol string) (*shipyard.Shipyard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Shipyards[waypointSymbol], nil
}

// MockContinuationRepository stores continuations in memory
type MockContinuationRepository struct {
	mu            sync.Mutex
	Continuations map[string]*behavior.Continuation
}

// NewMockContinuationRepository creates an empty continuation store
func NewMockContinuationRepository() *MockContinuationRepository {
	return &MockContinuationRepository{Continuations: make(map[string]*behavior.Continuation)}
}

func (m *MockContinuationRepository) Save(ctx context.Context, c *behavior.Continuation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.Continuations[c.ID] = &copied
	return nil
}

func (m *MockContinuationRepository) FindByID(ctx context.Context, id string) (*behavior.Continuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Continuations[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *MockContinuationRepository) ListPending(ctx context.Context) ([]*behavior.Continuation, error) {
	return m.pending(""), nil
}

func (m *MockContinuationRepository) ListPendingByShip(ctx context.Context, shipSymbol string) ([]*behavior.Continuation, error) {
	return m.pending(shipSymbol), nil
}

func (m *MockContinuationRepository) UpdateStatus(ctx context.Context, id string, status behavior.Status, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Continuations[id]; ok {
		c.Status = status
		c.LastError = lastError
	}
	return nil
}

func (m *MockContinuationRepository) CancelByShip(ctx context.Context, shipSymbol string) ([]*behavior.Continuation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cancelled []*behavior.Continuation
	for _, c := range m.Continuations {
		if c.ShipSymbol == shipSymbol && c.Status == behavior.StatusPending {
			c.Status = behavior.StatusCancelled
			copied := *c
			cancelled = append(cancelled, &copied)
		}
	}
	return cancelled, nil
}

func (m *MockContinuationRepository) pending(shipSymbol string) []*behavior.Continuation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*behavior.Continuation
	for _, c := range m.Continuations {
		if c.Status != behavior.StatusPending {
			continue
		}
		if shipSymbol != "" && c.ShipSymbol != shipSymbol {
			continue
		}
		copied := *c
		pending = append(pending, &copied)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].DueAt.Before(pending[j].DueAt) })
	return pending
}
