package commands

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// Orbit moves a docked ship into orbit. Orbiting or transiting ships are a no-op.
func (s *ActionSupport) Orbit(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	if !ship.NeedsOrbit() {
		reason := "already in orbit"
		if ship.IsInTransit() {
			reason = "in transit"
		}
		return noop(ActionOrbit, ship, reason), nil
	}

	payload, err := s.apiClient.OrbitShip(ctx, ship.Symbol())
	if err != nil {
		return nil, fmt.Errorf("failed to orbit ship: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionOrbit, ship, payload.Failure), nil
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}
	return applied(ActionOrbit, ship), nil
}

// Dock docks an orbiting ship. Docked ships are a no-op; ships in transit
// cannot dock.
func (s *ActionSupport) Dock(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	needed, err := ship.NeedsDock()
	if err != nil {
		return invalidState(ActionDock, ship, err), nil
	}
	if !needed {
		return noop(ActionDock, ship, "already docked"), nil
	}

	payload, err := s.apiClient.DockShip(ctx, ship.Symbol())
	if err != nil {
		return nil, fmt.Errorf("failed to dock ship: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionDock, ship, payload.Failure), nil
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}
	return applied(ActionDock, ship), nil
}

// SetFlightMode changes the flight mode of a stationary ship
func (s *ActionSupport) SetFlightMode(ctx context.Context, ship *navigation.Ship, mode shared.FlightMode) (*types.ActionResult, error) {
	if !mode.IsValid() {
		return invalidState(ActionSetFlightMode, ship, shared.NewInvalidFlightModeError(mode.Name())), nil
	}
	if err := ship.EnsureNotInTransit("change flight mode"); err != nil {
		return invalidState(ActionSetFlightMode, ship, err), nil
	}
	if ship.FlightMode() == mode {
		return noop(ActionSetFlightMode, ship, "already in "+mode.Name()), nil
	}

	payload, err := s.apiClient.SetFlightMode(ctx, ship.Symbol(), mode)
	if err != nil {
		return nil, fmt.Errorf("failed to set flight mode: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionSetFlightMode, ship, payload.Failure), nil
	}
	if payload.Nav == nil {
		if err := ship.SetFlightMode(mode); err != nil {
			return invalidState(ActionSetFlightMode, ship, err), nil
		}
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}
	return applied(ActionSetFlightMode, ship), nil
}

// ensureOrbit orbits a docked ship; a nil result means nothing was needed
func (s *ActionSupport) ensureOrbit(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	if !ship.NeedsOrbit() {
		return nil, nil
	}
	return s.Orbit(ctx, ship)
}

// ensureDocked docks an orbiting ship; a nil result means nothing was needed
func (s *ActionSupport) ensureDocked(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	if ship.IsDocked() {
		return nil, nil
	}
	return s.Dock(ctx, ship)
}

func respond(result *types.ActionResult, err error) (mediator.Response, error) {
	if err != nil {
		return nil, err
	}
	return result, nil
}

// OrbitShipHandler - Handles orbit ship commands
type OrbitShipHandler struct {
	support *ActionSupport
}

// NewOrbitShipHandler creates a new orbit ship handler
func NewOrbitShipHandler(support *ActionSupport) *OrbitShipHandler {
	return &OrbitShipHandler{support: support}
}

// Handle executes the orbit ship command
func (h *OrbitShipHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.OrbitShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Orbit(ctx, ship))
}

// DockShipHandler - Handles dock ship commands
type DockShipHandler struct {
	support *ActionSupport
}

// NewDockShipHandler creates a new dock ship handler
func NewDockShipHandler(support *ActionSupport) *DockShipHandler {
	return &DockShipHandler{support: support}
}

// Handle executes the dock ship command
func (h *DockShipHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.DockShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Dock(ctx, ship))
}

// SetFlightModeHandler - Handles set flight mode commands
type SetFlightModeHandler struct {
	support *ActionSupport
}

// NewSetFlightModeHandler creates a new set flight mode handler
func NewSetFlightModeHandler(support *ActionSupport) *SetFlightModeHandler {
	return &SetFlightModeHandler{support: support}
}

// Handle executes the set flight mode command
func (h *SetFlightModeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.SetFlightModeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.SetFlightMode(ctx, ship, cmd.Mode))
}

// RefreshShipHandler - Handles refresh ship commands
type RefreshShipHandler struct {
	support *ActionSupport
}

// NewRefreshShipHandler creates a new refresh ship handler
func NewRefreshShipHandler(support *ActionSupport) *RefreshShipHandler {
	return &RefreshShipHandler{support: support}
}

// Handle executes the refresh ship command
func (h *RefreshShipHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.RefreshShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	if err := h.support.RefreshShip(ctx, ship); err != nil {
		return nil, err
	}
	return applied(ActionRefresh, ship), nil
}
