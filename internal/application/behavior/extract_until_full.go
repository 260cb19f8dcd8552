package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
)

// ExtractUntilFull runs one extraction step: extract once if the hold has
// room, jettison everything that is not targetResource, then either complete
// on a full hold or continue when the cooldown expires.
func (d *Driver) ExtractUntilFull(ctx context.Context, shipSymbol, targetResource string) (*CycleResult, error) {
	started := time.Now()
	result := &CycleResult{ShipSymbol: shipSymbol, Action: behavior.ActionExtractUntilFull}

	var params map[string]string
	if targetResource != "" {
		params = map[string]string{behavior.ParamTargetResource: targetResource}
	}

	ship, err := d.support.LoadShip(ctx, shipSymbol)
	if err != nil {
		return nil, err
	}

	if !ship.Cargo().IsFull() {
		extracted, err := d.support.Extract(ctx, ship)
		if err != nil {
			return nil, err
		}
		switch {
		case extracted.Outcome == shipTypes.OutcomeInCooldown:
			result.Last = extracted
			result.Reason = extracted.String()
			due := d.support.Clock().Now().Add(extracted.CooldownRemaining)
			if err := d.scheduleAt(ctx, result, params, due); err != nil {
				return nil, err
			}
			return d.finish(result, started), nil
		case !extracted.OK():
			return d.finish(d.abort(ctx, result, extracted), started), nil
		}
		result.Last = extracted
	}

	if targetResource != "" {
		for _, item := range ship.Cargo().ItemsOtherThan(targetResource) {
			dumped, err := d.support.Jettison(ctx, ship, item.Symbol, nil)
			if err != nil {
				return nil, err
			}
			if !dumped.OK() {
				return d.finish(d.abort(ctx, result, dumped), started), nil
			}
		}
	}

	if ship.Cargo().IsFull() {
		result.Outcome = CycleCompleted
		result.Reason = "cargo full"
		return d.finish(result, started), nil
	}

	if expiry := ship.CooldownExpiration(); expiry != nil && expiry.After(d.support.Clock().Now()) {
		err = d.scheduleAt(ctx, result, params, *expiry)
	} else {
		err = d.scheduleNow(ctx, result, params)
	}
	if err != nil {
		return nil, err
	}
	return d.finish(result, started), nil
}

// ExtractUntilFullHandler - Handles extraction step commands
type ExtractUntilFullHandler struct {
	driver *Driver
}

// NewExtractUntilFullHandler creates a new extraction step handler
func NewExtractUntilFullHandler(driver *Driver) *ExtractUntilFullHandler {
	return &ExtractUntilFullHandler{driver: driver}
}

// Handle executes the extraction step command
func (h *ExtractUntilFullHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*ExtractUntilFullCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.driver.ExtractUntilFull(ctx, cmd.ShipSymbol, cmd.TargetResource)
}
