package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// APIClient defines the domain's interface for interacting with the SpaceTraders API.
//
// Reads return typed domain objects and fail with an error on any transport or
// HTTP failure. Mutations return an ActionPayload: a structured upstream
// rejection arrives as payload.Failure with a nil error, so callers branch on
// the payload rather than the error. Only transport failures are errors.
type APIClient interface {
	// Reads
	GetAgent(ctx context.Context) (*player.Agent, error)
	GetShip(ctx context.Context, symbol string) (*navigation.Ship, error)
	ListShips(ctx context.Context) ([]*navigation.Ship, error)
	GetCooldown(ctx context.Context, shipSymbol string) (*time.Time, error)
	GetSystem(ctx context.Context, symbol string) (*system.System, error)
	ListWaypoints(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error)
	GetWaypoint(ctx context.Context, symbol string) (*shared.Waypoint, error)
	GetMarket(ctx context.Context, waypointSymbol string) (*market.Market, error)
	GetShipyard(ctx context.Context, waypointSymbol string) (*shipyard.Shipyard, error)
	ListContracts(ctx context.Context) ([]*contract.Contract, error)

	// Mutations
	OrbitShip(ctx context.Context, shipSymbol string) (*ActionPayload, error)
	DockShip(ctx context.Context, shipSymbol string) (*ActionPayload, error)
	SetFlightMode(ctx context.Context, shipSymbol string, mode shared.FlightMode) (*ActionPayload, error)
	NavigateShip(ctx context.Context, shipSymbol, destination string) (*ActionPayload, error)
	RefuelShip(ctx context.Context, shipSymbol string, units int, fromCargo bool) (*ActionPayload, error)
	PurchaseCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ActionPayload, error)
	SellCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ActionPayload, error)
	JettisonCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*ActionPayload, error)
	ExtractResources(ctx context.Context, shipSymbol string) (*ActionPayload, error)
	SiphonResources(ctx context.Context, shipSymbol string) (*ActionPayload, error)
}

// RemoteFailure is a structured business rejection from the server
type RemoteFailure struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func (f *RemoteFailure) Error() string {
	return fmt.Sprintf("remote rejected (code %d): %s", f.Code, f.Message)
}

// NavSnapshot is the nav block of a mutation payload
type NavSnapshot struct {
	Status         navigation.NavStatus
	FlightMode     shared.FlightMode
	SystemSymbol   string
	WaypointSymbol string
	Route          *navigation.Route
}

// AgentBalance is the agent block carried by trade payloads
type AgentBalance struct {
	Symbol    string
	Credits   int
	ShipCount int
}

// Yield is what one extraction or siphon produced
type Yield struct {
	Symbol string
	Units  int
}

// ActionPayload is the typed result of a remote mutation. Every block is
// optional and only set when the upstream response carried it.
// CooldownCleared is set when the response carried a cooldown block that has
// already run out; Cooldown stays nil in that case.
type ActionPayload struct {
	Failure         *RemoteFailure
	Nav             *NavSnapshot
	Fuel            *shared.Fuel
	Cargo           *shared.Cargo
	Cooldown        *time.Time
	CooldownCleared bool
	Agent           *AgentBalance
	Transaction     *market.Transaction
	Yield           *Yield
}

// Rejected reports whether the server refused the action
func (p *ActionPayload) Rejected() bool {
	return p != nil && p.Failure != nil
}
