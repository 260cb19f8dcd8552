package commands

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// Refuel buys fuel at the current waypoint, docking first if needed.
// units nil fills the tank. A full tank is a no-op.
func (s *ActionSupport) Refuel(ctx context.Context, ship *navigation.Ship, units *int, fromCargo bool) (*types.ActionResult, error) {
	if ship.Fuel().IsFull() {
		return noop(ActionRefuel, ship, "tank full"), nil
	}
	requested := 0
	if units != nil {
		if *units <= 0 {
			return noop(ActionRefuel, ship, "zero units requested"), nil
		}
		requested = *units
	}

	if result, err := s.ensureDocked(ctx, ship); err != nil || (result != nil && !result.OK()) {
		return result, err
	}

	fuelBefore := ship.Fuel().Current
	payload, err := s.apiClient.RefuelShip(ctx, ship.Symbol(), requested, fromCargo)
	if err != nil {
		return nil, fmt.Errorf("failed to refuel ship: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionRefuel, ship, payload.Failure), nil
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}

	added := ship.Fuel().Current - fuelBefore
	metrics.RecordFuelPurchase(ship.WaypointSymbol(), added)

	result := applied(ActionRefuel, ship)
	result.Units = added
	result.Transaction = payload.Transaction
	return result, nil
}

// RefuelShipHandler - Handles refuel ship commands
type RefuelShipHandler struct {
	support *ActionSupport
}

// NewRefuelShipHandler creates a new refuel ship handler
func NewRefuelShipHandler(support *ActionSupport) *RefuelShipHandler {
	return &RefuelShipHandler{support: support}
}

// Handle executes the refuel ship command
func (h *RefuelShipHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.RefuelShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Refuel(ctx, ship, cmd.Units, cmd.FromCargo))
}
