package commands

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// Navigate flies a stationary ship to destination in one hop.
//
// A docked ship is put into orbit first. When the tank cannot cover the trip
// in the current flight mode, the mode is switched to DRIFT before the
// navigate call is issued. Arrival is reported on the result.
func (s *ActionSupport) Navigate(ctx context.Context, ship *navigation.Ship, destination string) (*types.ActionResult, error) {
	logger := common.LoggerFromContext(ctx)

	if err := ship.EnsureNotInTransit("navigate"); err != nil {
		return invalidState(ActionNavigate, ship, err), nil
	}
	if ship.WaypointSymbol() == destination {
		return noop(ActionNavigate, ship, "already at "+destination), nil
	}

	origin, err := s.EnsureWaypoint(ctx, ship.WaypointSymbol())
	if err != nil {
		return nil, err
	}
	target, err := s.EnsureWaypoint(ctx, destination)
	if err != nil {
		return nil, err
	}

	plan, err := navigation.PlanNavigation(ship, origin, target)
	if err != nil {
		return nil, fmt.Errorf("failed to plan navigation: %w", err)
	}

	if result, err := s.ensureOrbit(ctx, ship); err != nil || (result != nil && !result.OK()) {
		return result, err
	}

	if plan.Downgraded {
		logger.Log("INFO", "Fuel too low for flight mode, drifting", map[string]interface{}{
			"ship_symbol": ship.Symbol(),
			"action":      ActionNavigate,
			"fuel":        ship.Fuel().Current,
			"destination": destination,
			"mode":        plan.FlightMode.Name(),
		})
		result, err := s.SetFlightMode(ctx, ship, plan.FlightMode)
		if err != nil || !result.OK() {
			return result, err
		}
	}

	fuelBefore := ship.Fuel().Current
	payload, err := s.apiClient.NavigateShip(ctx, ship.Symbol(), destination)
	if err != nil {
		return nil, fmt.Errorf("failed to navigate ship: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionNavigate, ship, payload.Failure), nil
	}
	if payload.Fuel == nil {
		payload.Fuel = ship.Fuel().Consume(plan.FuelCost)
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}

	consumed := fuelBefore - ship.Fuel().Current
	metrics.RecordFuelConsumption(ship.FlightMode().Name(), consumed)

	result := applied(ActionNavigate, ship)
	result.Units = consumed
	if route := ship.Route(); route != nil {
		arrival := route.Arrival
		result.Arrival = &arrival
	}

	logger.Log("INFO", "Ship en route", map[string]interface{}{
		"ship_symbol":   ship.Symbol(),
		"action":        ActionNavigate,
		"destination":   destination,
		"flight_mode":   ship.FlightMode().Name(),
		"fuel_consumed": consumed,
	})
	return result, nil
}

// NavigateShipHandler - Handles navigate ship commands
type NavigateShipHandler struct {
	support *ActionSupport
}

// NewNavigateShipHandler creates a new navigate ship handler
func NewNavigateShipHandler(support *ActionSupport) *NavigateShipHandler {
	return &NavigateShipHandler{support: support}
}

// Handle executes the navigate ship command
func (h *NavigateShipHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.NavigateShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.Destination == "" {
		return nil, fmt.Errorf("destination is required")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Navigate(ctx, ship, cmd.Destination))
}
