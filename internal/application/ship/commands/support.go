package commands

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// Action names used in results, logs and metrics
const (
	ActionOrbit         = "orbit"
	ActionDock          = "dock"
	ActionSetFlightMode = "set_flight_mode"
	ActionNavigate      = "navigate"
	ActionRefuel        = "refuel"
	ActionPurchase      = "purchase"
	ActionSell          = "sell"
	ActionSellAll       = "sell_all"
	ActionJettison      = "jettison"
	ActionExtract       = "extract"
	ActionSiphon        = "siphon"
	ActionRefresh       = "refresh"
)

// ActionSupport holds the collaborators shared by every ship action handler
// and implements the actions themselves. Handlers are thin mediator adapters
// over these methods, so one action can chain into another (auto-dock,
// auto-orbit) without a round trip through the mediator.
type ActionSupport struct {
	apiClient       domainPorts.APIClient
	shipRepo        navigation.ShipRepository
	marketRepo      market.MarketRepository
	transactionRepo market.TransactionRepository
	waypointRepo    system.WaypointRepository
	agentRepo       player.AgentRepository
	clock           shared.Clock
}

// NewActionSupport creates the shared ship action collaborators
func NewActionSupport(
	apiClient domainPorts.APIClient,
	shipRepo navigation.ShipRepository,
	marketRepo market.MarketRepository,
	transactionRepo market.TransactionRepository,
	waypointRepo system.WaypointRepository,
	agentRepo player.AgentRepository,
	clock shared.Clock,
) *ActionSupport {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ActionSupport{
		apiClient:       apiClient,
		shipRepo:        shipRepo,
		marketRepo:      marketRepo,
		transactionRepo: transactionRepo,
		waypointRepo:    waypointRepo,
		agentRepo:       agentRepo,
		clock:           clock,
	}
}

// Clock exposes the canonical clock
func (s *ActionSupport) Clock() shared.Clock {
	return s.clock
}

// LoadShip returns the cached ship, fetching it on first sight. A cached
// transit whose arrival has passed is resolved into orbit.
func (s *ActionSupport) LoadShip(ctx context.Context, symbol string) (*navigation.Ship, error) {
	ship, err := s.shipRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", symbol, err)
	}
	if ship == nil {
		ship, err = s.apiClient.GetShip(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch ship %s: %w", symbol, err)
		}
		if err := s.saveShip(ctx, ship); err != nil {
			return nil, err
		}
		return ship, nil
	}

	if ship.ResolveArrival(s.clock.Now()) {
		if err := s.saveShip(ctx, ship); err != nil {
			return nil, err
		}
	}
	return ship, nil
}

// RefreshShip replaces server-owned state with a fresh snapshot
func (s *ActionSupport) RefreshShip(ctx context.Context, ship *navigation.Ship) error {
	remote, err := s.apiClient.GetShip(ctx, ship.Symbol())
	if err != nil {
		return fmt.Errorf("failed to refresh ship %s: %w", ship.Symbol(), err)
	}
	ship.Refresh(remote)
	return s.saveShip(ctx, ship)
}

func (s *ActionSupport) saveShip(ctx context.Context, ship *navigation.Ship) error {
	if err := s.shipRepo.Save(ctx, ship); err != nil {
		return fmt.Errorf("failed to save ship %s: %w", ship.Symbol(), err)
	}
	return nil
}

// applyPayload copies every block a mutation payload carries onto the ship
// and persists the side effects (agent balance, transaction).
func (s *ActionSupport) applyPayload(ctx context.Context, ship *navigation.Ship, payload *domainPorts.ActionPayload) error {
	if payload.Nav != nil {
		nav := payload.Nav
		if err := ship.ApplyNav(nav.Status, nav.FlightMode, nav.SystemSymbol, nav.WaypointSymbol, nav.Route); err != nil {
			return fmt.Errorf("invalid nav in payload: %w", err)
		}
	}
	ship.ApplyFuel(payload.Fuel)
	ship.ApplyCargo(payload.Cargo)
	if payload.Cooldown != nil {
		ship.ApplyCooldown(payload.Cooldown)
	} else if payload.CooldownCleared {
		ship.ApplyCooldown(nil)
	}

	if err := s.saveShip(ctx, ship); err != nil {
		return err
	}

	if payload.Agent != nil {
		if err := s.applyAgent(ctx, payload.Agent); err != nil {
			return err
		}
	}
	if payload.Transaction != nil {
		if err := s.recordTransaction(ctx, payload.Transaction); err != nil {
			return err
		}
	}
	return nil
}

func (s *ActionSupport) applyAgent(ctx context.Context, balance *domainPorts.AgentBalance) error {
	if balance.Symbol == "" {
		return nil
	}
	agent, err := s.agentRepo.FindBySymbol(ctx, balance.Symbol)
	if err != nil {
		return fmt.Errorf("failed to load agent %s: %w", balance.Symbol, err)
	}
	if agent == nil {
		agent, err = player.NewAgent("", balance.Symbol, "", "", balance.Credits, balance.ShipCount)
		if err != nil {
			return err
		}
	} else {
		agent.ApplyBalance(balance.Credits, balance.ShipCount)
	}
	if err := s.agentRepo.Save(ctx, agent); err != nil {
		return fmt.Errorf("failed to save agent %s: %w", balance.Symbol, err)
	}
	return nil
}

// recordTransaction stores a transaction, creating the trade good and the
// waypoint it references on first sight. Replays of the same transaction are
// ignored by the repository.
func (s *ActionSupport) recordTransaction(ctx context.Context, tx *market.Transaction) error {
	entry, err := market.NewCatalogEntry(tx.TradeSymbol, "", "")
	if err != nil {
		return err
	}
	if err := s.marketRepo.EnsureCatalog(ctx, []market.TradeGood{entry}); err != nil {
		return fmt.Errorf("failed to ensure trade good %s: %w", tx.TradeSymbol, err)
	}
	if _, err := s.EnsureWaypoint(ctx, tx.WaypointSymbol); err != nil {
		return err
	}

	created, err := s.transactionRepo.Record(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	if !created {
		common.LoggerFromContext(ctx).Log("DEBUG", "Transaction already recorded", map[string]interface{}{
			"transaction": tx.String(),
		})
		return nil
	}

	metrics.RecordTrade(tx.TradeSymbol, string(tx.Type), tx.Units, tx.TotalPrice)
	return nil
}

// EnsureWaypoint returns the cached waypoint, fetching and caching it on first sight
func (s *ActionSupport) EnsureWaypoint(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	waypoint, err := s.waypointRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load waypoint %s: %w", symbol, err)
	}
	if waypoint != nil {
		return waypoint, nil
	}

	waypoint, err = s.apiClient.GetWaypoint(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch waypoint %s: %w", symbol, err)
	}
	if err := s.waypointRepo.Save(ctx, waypoint); err != nil {
		return nil, fmt.Errorf("failed to save waypoint %s: %w", symbol, err)
	}
	return waypoint, nil
}

// MarketAt returns the cached market, fetching and caching it when missing
func (s *ActionSupport) MarketAt(ctx context.Context, waypointSymbol string) (*market.Market, error) {
	m, err := s.marketRepo.FindByWaypoint(ctx, waypointSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load market %s: %w", waypointSymbol, err)
	}
	if m != nil {
		return m, nil
	}

	m, err = s.apiClient.GetMarket(ctx, waypointSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market %s: %w", waypointSymbol, err)
	}
	if err := s.marketRepo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save market %s: %w", waypointSymbol, err)
	}
	return m, nil
}

// RefreshMarket fetches the live market at a waypoint and upserts it into the cache
func (s *ActionSupport) RefreshMarket(ctx context.Context, waypointSymbol string) (*market.Market, error) {
	m, err := s.apiClient.GetMarket(ctx, waypointSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market %s: %w", waypointSymbol, err)
	}
	if err := s.marketRepo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save market %s: %w", waypointSymbol, err)
	}
	return m, nil
}

// Result constructors

func applied(action string, ship *navigation.Ship) *types.ActionResult {
	return finish(&types.ActionResult{Action: action, ShipSymbol: ship.Symbol(), Outcome: types.OutcomeApplied, Ship: ship})
}

func noop(action string, ship *navigation.Ship, reason string) *types.ActionResult {
	return finish(&types.ActionResult{Action: action, ShipSymbol: ship.Symbol(), Outcome: types.OutcomeNoop, Reason: reason, Ship: ship})
}

func invalidState(action string, ship *navigation.Ship, err error) *types.ActionResult {
	return finish(&types.ActionResult{Action: action, ShipSymbol: ship.Symbol(), Outcome: types.OutcomeInvalidState, Reason: err.Error(), Ship: ship})
}

func (s *ActionSupport) rejected(ctx context.Context, action string, ship *navigation.Ship, failure *domainPorts.RemoteFailure) *types.ActionResult {
	common.LoggerFromContext(ctx).Log("WARN", "Ship action rejected by server", map[string]interface{}{
		"ship_symbol": ship.Symbol(),
		"action":      action,
		"code":        failure.Code,
		"message":     failure.Message,
	})
	return finish(&types.ActionResult{Action: action, ShipSymbol: ship.Symbol(), Outcome: types.OutcomeRejected, Failure: failure, Ship: ship})
}

func finish(r *types.ActionResult) *types.ActionResult {
	metrics.RecordShipAction(r.Action, string(r.Outcome))
	return r
}
