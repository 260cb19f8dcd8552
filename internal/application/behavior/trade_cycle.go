package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// TradeCycle runs one step of the trade loop:
//
//  1. refresh the ship and fly in CRUISE
//  2. dock and refuel
//  3. with cargo aboard, sell everything and go again at once
//  4. otherwise buy the market's best export and fly it to its destination,
//     or wander to one of the nearest export markets when nothing is bought
//
// A ship found in transit is picked up again at arrival. Any failed action
// aborts the step without a continuation.
func (d *Driver) TradeCycle(ctx context.Context, shipSymbol string) (*CycleResult, error) {
	started := time.Now()
	logger := common.LoggerFromContext(ctx)
	result := &CycleResult{ShipSymbol: shipSymbol, Action: behavior.ActionTradeCycle}

	ship, err := d.support.LoadShip(ctx, shipSymbol)
	if err != nil {
		return nil, err
	}
	if err := d.support.RefreshShip(ctx, ship); err != nil {
		return nil, err
	}

	if ship.IsInTransit() {
		result.Reason = "in transit"
		if err := d.scheduleAfterArrival(ctx, result, ship.Route().Arrival); err != nil {
			return nil, err
		}
		return d.finish(result, started), nil
	}

	steps := []func() (*shipTypes.ActionResult, error){
		func() (*shipTypes.ActionResult, error) { return d.support.SetFlightMode(ctx, ship, shared.FlightModeCruise) },
		func() (*shipTypes.ActionResult, error) { return d.support.Dock(ctx, ship) },
		func() (*shipTypes.ActionResult, error) { return d.support.Refuel(ctx, ship, nil, false) },
	}
	for _, step := range steps {
		action, err := step()
		if err != nil {
			return nil, err
		}
		if !action.OK() {
			return d.finish(d.abort(ctx, result, action), started), nil
		}
		result.Last = action
	}

	if !ship.Cargo().IsEmpty() {
		sold, err := d.support.SellAll(ctx, ship)
		if err != nil {
			return nil, err
		}
		if !sold.OK() {
			return d.finish(d.abort(ctx, result, sold), started), nil
		}
		result.Last = sold
		if err := d.scheduleNow(ctx, result, nil); err != nil {
			return nil, err
		}
		return d.finish(result, started), nil
	}

	waypoint, err := d.support.EnsureWaypoint(ctx, ship.WaypointSymbol())
	if err != nil {
		return nil, err
	}
	if waypoint.IsMarket() {
		if _, err := d.support.RefreshMarket(ctx, waypoint.Symbol); err != nil {
			return nil, err
		}
	}

	graph, err := d.graphs.Load(ctx, ship.SystemSymbol())
	if err != nil {
		return nil, err
	}

	var destination string
	if best, ok := graph.BestExport(ship.WaypointSymbol()); ok {
		logger.Log("INFO", "Buying best export", map[string]interface{}{
			"ship_symbol": ship.Symbol(),
			"good":        best.TradeSymbol,
			"destination": best.Destination,
			"ratio":       best.Ratio,
		})
		bought, err := d.support.Purchase(ctx, ship, best.TradeSymbol, nil)
		if err != nil {
			return nil, err
		}
		if !bought.OK() {
			return d.finish(d.abort(ctx, result, bought), started), nil
		}
		if bought.Applied() {
			result.Last = bought
			destination = best.Destination
		} else {
			logger.Log("INFO", "Nothing bought", map[string]interface{}{
				"ship_symbol": ship.Symbol(),
				"good":        best.TradeSymbol,
				"reason":      bought.Reason,
			})
		}
	}
	if destination == "" {
		candidates := graph.ExportMarketsByDistance(ship.WaypointSymbol())
		if len(candidates) > d.opts.RandomExportCandidates {
			candidates = candidates[:d.opts.RandomExportCandidates]
		}
		if len(candidates) == 0 {
			result.Outcome = CycleAborted
			result.Reason = "no export markets known in " + ship.SystemSymbol()
			logger.Log("WARN", "Behavior step aborted", map[string]interface{}{
				"ship_symbol": ship.Symbol(),
				"action":      string(result.Action),
				"reason":      result.Reason,
			})
			return d.finish(result, started), nil
		}
		destination = candidates[d.random.Intn(len(candidates))].WaypointSymbol
		logger.Log("INFO", "No profitable export, relocating", map[string]interface{}{
			"ship_symbol": ship.Symbol(),
			"destination": destination,
		})
	}

	flown, err := d.support.Navigate(ctx, ship, destination)
	if err != nil {
		return nil, err
	}
	if !flown.OK() {
		return d.finish(d.abort(ctx, result, flown), started), nil
	}
	result.Last = flown

	if flown.Arrival == nil {
		err = d.scheduleNow(ctx, result, nil)
	} else {
		err = d.scheduleAfterArrival(ctx, result, *flown.Arrival)
	}
	if err != nil {
		return nil, err
	}
	return d.finish(result, started), nil
}

func (d *Driver) scheduleAfterArrival(ctx context.Context, result *CycleResult, arrival time.Time) error {
	return d.scheduleAt(ctx, result, nil, arrival.Add(d.opts.ArrivalBuffer))
}

// TradeCycleHandler - Handles trade cycle commands
type TradeCycleHandler struct {
	driver *Driver
}

// NewTradeCycleHandler creates a new trade cycle handler
func NewTradeCycleHandler(driver *Driver) *TradeCycleHandler {
	return &TradeCycleHandler{driver: driver}
}

// Handle executes the trade cycle command
func (h *TradeCycleHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*TradeCycleCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.driver.TradeCycle(ctx, cmd.ShipSymbol)
}

// behaviorAction maps a desired behavior to the step that drives it
func behaviorAction(b navigation.Behavior) (behavior.Action, error) {
	switch b {
	case navigation.BehaviorTrade:
		return behavior.ActionTradeCycle, nil
	case navigation.BehaviorMine:
		return behavior.ActionExtractUntilFull, nil
	default:
		return "", fmt.Errorf("behavior %s has no driver", b)
	}
}
