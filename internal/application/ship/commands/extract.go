package commands

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
)

type harvestCall func(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error)

// Extract mines the current waypoint once
func (s *ActionSupport) Extract(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	return s.harvest(ctx, ship, ActionExtract, s.apiClient.ExtractResources)
}

// Siphon siphons gas at the current waypoint once
func (s *ActionSupport) Siphon(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	return s.harvest(ctx, ship, ActionSiphon, s.apiClient.SiphonResources)
}

// harvest runs one extraction-class action. A ship in cooldown is never sent
// to the server: the result reports IN_COOLDOWN with the time remaining and
// the ship is left untouched.
func (s *ActionSupport) harvest(ctx context.Context, ship *navigation.Ship, action string, call harvestCall) (*types.ActionResult, error) {
	now := s.clock.Now()
	if ship.InCooldown(now) {
		return finish(&types.ActionResult{
			Action:            action,
			ShipSymbol:        ship.Symbol(),
			Outcome:           types.OutcomeInCooldown,
			CooldownRemaining: ship.CooldownRemaining(now),
			Ship:              ship,
		}), nil
	}
	if err := ship.EnsureNotInTransit(action); err != nil {
		return invalidState(action, ship, err), nil
	}
	if ship.Cargo().IsFull() {
		return noop(action, ship, "cargo full"), nil
	}

	if result, err := s.ensureOrbit(ctx, ship); err != nil || (result != nil && !result.OK()) {
		return result, err
	}

	payload, err := call(ctx, ship.Symbol())
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, action, ship, payload.Failure), nil
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}

	result := applied(action, ship)
	result.CooldownRemaining = ship.CooldownRemaining(s.clock.Now())
	if payload.Yield != nil {
		result.Yield = payload.Yield
		result.Units = payload.Yield.Units
		metrics.RecordExtraction(payload.Yield.Symbol, payload.Yield.Units)
	}
	return result, nil
}

// ExtractResourcesHandler - Handles extract resources commands
type ExtractResourcesHandler struct {
	support *ActionSupport
}

// NewExtractResourcesHandler creates a new extract resources handler
func NewExtractResourcesHandler(support *ActionSupport) *ExtractResourcesHandler {
	return &ExtractResourcesHandler{support: support}
}

// Handle executes the extract resources command
func (h *ExtractResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.ExtractResourcesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Extract(ctx, ship))
}

// SiphonResourcesHandler - Handles siphon resources commands
type SiphonResourcesHandler struct {
	support *ActionSupport
}

// NewSiphonResourcesHandler creates a new siphon resources handler
func NewSiphonResourcesHandler(support *ActionSupport) *SiphonResourcesHandler {
	return &SiphonResourcesHandler{support: support}
}

// Handle executes the siphon resources command
func (h *SiphonResourcesHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.SiphonResourcesCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Siphon(ctx, ship))
}
