package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// Start annotates a ship with a behavior and enqueues its first step
func (d *Driver) Start(ctx context.Context, shipSymbol string, b navigation.Behavior, targetResource string) (*StartBehaviorResponse, error) {
	action, err := behaviorAction(b)
	if err != nil {
		return nil, err
	}

	var params map[string]string
	if targetResource != "" && action == behavior.ActionExtractUntilFull {
		params = map[string]string{behavior.ParamTargetResource: targetResource}
	}
	result := &CycleResult{ShipSymbol: shipSymbol, Action: action}

	// A restart replaces whatever the ship was doing, including the next step
	// an in-flight cycle is about to schedule
	err = d.withShipLock(shipSymbol, func() error {
		ship, err := d.support.LoadShip(ctx, shipSymbol)
		if err != nil {
			return err
		}
		if _, err := d.continuations.CancelByShip(ctx, shipSymbol); err != nil {
			return fmt.Errorf("failed to cancel continuations for %s: %w", shipSymbol, err)
		}

		ship.SetBehavior(b)
		if err := d.shipRepo.Save(ctx, ship); err != nil {
			return fmt.Errorf("failed to save ship %s: %w", shipSymbol, err)
		}
		return d.scheduleNow(ctx, result, params)
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("INFO", "Behavior started", map[string]interface{}{
		"ship_symbol": shipSymbol,
		"behavior":    string(b),
		"action":      string(action),
	})
	return &StartBehaviorResponse{ShipSymbol: shipSymbol, Behavior: b, Continuation: result.Continuation}, nil
}

// Stop withdraws every pending continuation of a ship and clears its behavior
func (d *Driver) Stop(ctx context.Context, shipSymbol string) (*StopBehaviorResponse, error) {
	var cancelled []*behavior.Continuation
	err := d.withShipLock(shipSymbol, func() error {
		var err error
		cancelled, err = d.continuations.CancelByShip(ctx, shipSymbol)
		if err != nil {
			return fmt.Errorf("failed to cancel continuations for %s: %w", shipSymbol, err)
		}

		ship, err := d.shipRepo.FindBySymbol(ctx, shipSymbol)
		if err != nil {
			return fmt.Errorf("failed to load ship %s: %w", shipSymbol, err)
		}
		if ship != nil && ship.Behavior() != navigation.BehaviorNone {
			ship.SetBehavior(navigation.BehaviorNone)
			if err := d.shipRepo.Save(ctx, ship); err != nil {
				return fmt.Errorf("failed to save ship %s: %w", shipSymbol, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("INFO", "Behavior stopped", map[string]interface{}{
		"ship_symbol": shipSymbol,
		"cancelled":   len(cancelled),
	})
	return &StopBehaviorResponse{ShipSymbol: shipSymbol, Cancelled: cancelled}, nil
}

// Resume runs the step a fired continuation names. A ship whose behavior was
// cleared in the meantime is skipped.
func (d *Driver) Resume(ctx context.Context, c *behavior.Continuation) (*CycleResult, error) {
	if c == nil {
		return nil, fmt.Errorf("continuation cannot be nil")
	}

	ship, err := d.shipRepo.FindBySymbol(ctx, c.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship %s: %w", c.ShipSymbol, err)
	}
	if ship != nil && ship.Behavior() == navigation.BehaviorNone {
		result := &CycleResult{
			ShipSymbol: c.ShipSymbol,
			Action:     c.Action,
			Outcome:    CycleSkipped,
			Reason:     "ship has no behavior",
		}
		return d.finish(result, time.Now()), nil
	}

	switch c.Action {
	case behavior.ActionTradeCycle:
		return d.TradeCycle(ctx, c.ShipSymbol)
	case behavior.ActionExtractUntilFull:
		return d.ExtractUntilFull(ctx, c.ShipSymbol, c.Param(behavior.ParamTargetResource))
	default:
		return nil, fmt.Errorf("unknown behavior action: %s", c.Action)
	}
}

// StartBehaviorHandler - Handles start behavior commands
type StartBehaviorHandler struct {
	driver *Driver
}

// NewStartBehaviorHandler creates a new start behavior handler
func NewStartBehaviorHandler(driver *Driver) *StartBehaviorHandler {
	return &StartBehaviorHandler{driver: driver}
}

// Handle executes the start behavior command
func (h *StartBehaviorHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartBehaviorCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.driver.Start(ctx, cmd.ShipSymbol, cmd.Behavior, cmd.TargetResource)
}

// StopBehaviorHandler - Handles stop behavior commands
type StopBehaviorHandler struct {
	driver *Driver
}

// NewStopBehaviorHandler creates a new stop behavior handler
func NewStopBehaviorHandler(driver *Driver) *StopBehaviorHandler {
	return &StopBehaviorHandler{driver: driver}
}

// Handle executes the stop behavior command
func (h *StopBehaviorHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StopBehaviorCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.driver.Stop(ctx, cmd.ShipSymbol)
}

// ResumeContinuationHandler - Handles fired continuations
type ResumeContinuationHandler struct {
	driver *Driver
}

// NewResumeContinuationHandler creates a new resume handler
func NewResumeContinuationHandler(driver *Driver) *ResumeContinuationHandler {
	return &ResumeContinuationHandler{driver: driver}
}

// Handle executes the resume command
func (h *ResumeContinuationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ResumeContinuationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.driver.Resume(ctx, cmd.Continuation)
}
