package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// DefaultConcurrency bounds the market and shipyard fetches in flight per system.
// Every request still passes through the client's shared rate limiter.
const DefaultConcurrency = 4

// Report counts what one sync wrote into the cache
type Report struct {
	Agent     string   `json:"agent,omitempty" yaml:"agent,omitempty"`
	Systems   []string `json:"systems" yaml:"systems"`
	Waypoints int      `json:"waypoints" yaml:"waypoints"`
	Markets   int      `json:"markets" yaml:"markets"`
	Shipyards int      `json:"shipyards" yaml:"shipyards"`
	Ships     int      `json:"ships" yaml:"ships"`
	Contracts int      `json:"contracts" yaml:"contracts"`
}

func (r *Report) add(other *Report) {
	r.Waypoints += other.Waypoints
	r.Markets += other.Markets
	r.Shipyards += other.Shipyards
	r.Ships += other.Ships
	r.Contracts += other.Contracts
	r.Systems = append(r.Systems, other.Systems...)
}

// Service copies remote game state into the local cache
type Service struct {
	apiClient    domainPorts.APIClient
	agentRepo    player.AgentRepository
	waypointRepo system.WaypointRepository
	marketRepo   market.MarketRepository
	shipyardRepo shipyard.ShipyardRepository
	contractRepo contract.ContractRepository
	shipRepo     navigation.ShipRepository
	concurrency  int
}

// NewService creates a sync service. concurrency <= 0 uses DefaultConcurrency.
func NewService(
	apiClient domainPorts.APIClient,
	agentRepo player.AgentRepository,
	waypointRepo system.WaypointRepository,
	marketRepo market.MarketRepository,
	shipyardRepo shipyard.ShipyardRepository,
	contractRepo contract.ContractRepository,
	shipRepo navigation.ShipRepository,
	concurrency int,
) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		apiClient:    apiClient,
		agentRepo:    agentRepo,
		waypointRepo: waypointRepo,
		marketRepo:   marketRepo,
		shipyardRepo: shipyardRepo,
		contractRepo: contractRepo,
		shipRepo:     shipRepo,
		concurrency:  concurrency,
	}
}

// SyncAgent fetches the agent and upserts it
func (s *Service) SyncAgent(ctx context.Context) (*player.Agent, error) {
	agent, err := s.apiClient.GetAgent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent: %w", err)
	}
	if err := s.agentRepo.Save(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to save agent %s: %w", agent.Symbol, err)
	}
	return agent, nil
}

// SyncSystem caches a system and all its waypoints. With markets or
// shipyards set, the marketplaces and shipyards found are fetched as well.
func (s *Service) SyncSystem(ctx context.Context, systemSymbol string, markets, shipyards bool) (*Report, error) {
	sys, err := s.apiClient.GetSystem(ctx, systemSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch system %s: %w", systemSymbol, err)
	}
	if err := s.waypointRepo.SaveSystem(ctx, sys); err != nil {
		return nil, fmt.Errorf("failed to save system %s: %w", systemSymbol, err)
	}

	waypoints, err := s.apiClient.ListWaypoints(ctx, systemSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to list waypoints of %s: %w", systemSymbol, err)
	}
	for _, wp := range waypoints {
		if err := s.waypointRepo.Save(ctx, wp); err != nil {
			return nil, fmt.Errorf("failed to save waypoint %s: %w", wp.Symbol, err)
		}
	}

	report := &Report{Systems: []string{systemSymbol}, Waypoints: len(waypoints)}
	if markets {
		n, err := s.SyncMarkets(ctx, systemSymbol)
		if err != nil {
			return nil, err
		}
		report.Markets = n
	}
	if shipyards {
		n, err := s.SyncShipyards(ctx, systemSymbol)
		if err != nil {
			return nil, err
		}
		report.Shipyards = n
	}

	common.LoggerFromContext(ctx).Log("INFO", "System synced", map[string]interface{}{
		"system":    systemSymbol,
		"waypoints": report.Waypoints,
		"markets":   report.Markets,
		"shipyards": report.Shipyards,
	})
	return report, nil
}

// SyncMarkets refreshes every cached marketplace of a system
func (s *Service) SyncMarkets(ctx context.Context, systemSymbol string) (int, error) {
	return s.fanOut(ctx, systemSymbol, shared.TraitMarketplace, func(ctx context.Context, waypointSymbol string) error {
		m, err := s.apiClient.GetMarket(ctx, waypointSymbol)
		if err != nil {
			return fmt.Errorf("failed to fetch market %s: %w", waypointSymbol, err)
		}
		if err := s.marketRepo.Save(ctx, m); err != nil {
			return fmt.Errorf("failed to save market %s: %w", waypointSymbol, err)
		}
		return nil
	})
}

// SyncShipyards refreshes every cached shipyard of a system
func (s *Service) SyncShipyards(ctx context.Context, systemSymbol string) (int, error) {
	return s.fanOut(ctx, systemSymbol, shared.TraitShipyard, func(ctx context.Context, waypointSymbol string) error {
		sy, err := s.apiClient.GetShipyard(ctx, waypointSymbol)
		if err != nil {
			return fmt.Errorf("failed to fetch shipyard %s: %w", waypointSymbol, err)
		}
		if err := s.shipyardRepo.Save(ctx, sy); err != nil {
			return fmt.Errorf("failed to save shipyard %s: %w", waypointSymbol, err)
		}
		return nil
	})
}

// fanOut runs fetch for every cached waypoint of a system carrying trait,
// at most s.concurrency at a time. The first failure cancels the rest.
func (s *Service) fanOut(ctx context.Context, systemSymbol, trait string, fetch func(ctx context.Context, waypointSymbol string) error) (int, error) {
	waypoints, err := s.waypointRepo.ListByTrait(ctx, systemSymbol, trait)
	if err != nil {
		return 0, fmt.Errorf("failed to list %s waypoints of %s: %w", trait, systemSymbol, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, wp := range waypoints {
		symbol := wp.Symbol
		g.Go(func() error {
			return fetch(gctx, symbol)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(waypoints), nil
}

// SyncContracts upserts every contract of the agent
func (s *Service) SyncContracts(ctx context.Context) (int, error) {
	contracts, err := s.apiClient.ListContracts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	for _, c := range contracts {
		if err := s.contractRepo.Save(ctx, c); err != nil {
			return 0, fmt.Errorf("failed to save contract %s: %w", c.ID, err)
		}
	}
	return len(contracts), nil
}

// SyncShips upserts every ship of the agent. Cached ships keep their local
// behavior annotation; their cargo is reconciled with the snapshot.
func (s *Service) SyncShips(ctx context.Context) ([]*navigation.Ship, error) {
	remote, err := s.apiClient.ListShips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}

	ships := make([]*navigation.Ship, 0, len(remote))
	for _, r := range remote {
		ship, err := s.shipRepo.FindBySymbol(ctx, r.Symbol())
		if err != nil {
			return nil, fmt.Errorf("failed to load ship %s: %w", r.Symbol(), err)
		}
		if ship == nil {
			ship = r
		} else {
			ship.Refresh(r)
		}
		if err := s.shipRepo.Save(ctx, ship); err != nil {
			return nil, fmt.Errorf("failed to save ship %s: %w", ship.Symbol(), err)
		}
		ships = append(ships, ship)
	}
	return ships, nil
}

// SyncAll refreshes the agent, its ships and contracts, then every system
// named in systems. An empty list means the headquarters system plus every
// system a ship is in. Systems are synced concurrently.
func (s *Service) SyncAll(ctx context.Context, systems []string) (*Report, error) {
	agent, err := s.SyncAgent(ctx)
	if err != nil {
		return nil, err
	}
	ships, err := s.SyncShips(ctx)
	if err != nil {
		return nil, err
	}
	contracts, err := s.SyncContracts(ctx)
	if err != nil {
		return nil, err
	}

	if len(systems) == 0 {
		systems = systemsOf(agent, ships)
	}

	report := &Report{Agent: agent.Symbol, Ships: len(ships), Contracts: contracts}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range systems {
		symbol := symbol
		g.Go(func() error {
			r, err := s.SyncSystem(gctx, symbol, true, true)
			if err != nil {
				return err
			}
			mu.Lock()
			report.add(r)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(report.Systems)
	return report, nil
}

// systemsOf lists the headquarters system and the systems ships are in
func systemsOf(agent *player.Agent, ships []*navigation.Ship) []string {
	seen := make(map[string]bool)
	var systems []string
	add := func(symbol string) {
		if symbol != "" && !seen[symbol] {
			seen[symbol] = true
			systems = append(systems, symbol)
		}
	}
	if agent.Headquarters != "" {
		add(shared.ExtractSystemSymbol(agent.Headquarters))
	}
	for _, ship := range ships {
		add(ship.SystemSymbol())
	}
	sort.Strings(systems)
	return systems
}
