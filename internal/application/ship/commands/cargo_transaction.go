package commands

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/pkg/utils"
)

// Purchase buys a trade good at the current market.
//
// A ship that is not docked is docked and refreshed first. When units is nil
// the amount is min(market trade volume, free cargo capacity); an amount of
// zero is a no-op.
func (s *ActionSupport) Purchase(ctx context.Context, ship *navigation.Ship, tradeSymbol string, units *int) (*types.ActionResult, error) {
	if err := ship.EnsureNotInTransit("purchase cargo"); err != nil {
		return invalidState(ActionPurchase, ship, err), nil
	}

	if !ship.IsDocked() {
		result, err := s.Dock(ctx, ship)
		if err != nil || !result.OK() {
			return result, err
		}
		if err := s.RefreshShip(ctx, ship); err != nil {
			return nil, err
		}
	}

	var amount int
	if units != nil {
		amount = *units
	} else {
		m, err := s.MarketAt(ctx, ship.WaypointSymbol())
		if err != nil {
			return nil, err
		}
		amount = utils.ClampNonNegative(utils.Min(m.GetTransactionLimit(tradeSymbol), ship.Cargo().AvailableCapacity()))
	}
	if amount <= 0 {
		return noop(ActionPurchase, ship, "no units to buy"), nil
	}

	payload, err := s.apiClient.PurchaseCargo(ctx, ship.Symbol(), tradeSymbol, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to purchase cargo: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionPurchase, ship, payload.Failure), nil
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}

	result := applied(ActionPurchase, ship)
	result.Units = amount
	result.Transaction = payload.Transaction
	return result, nil
}

// Sell sells a held good at the current market. Selling is a no-op unless
// the ship holds the good and is docked at a marketplace. units nil sells
// everything held; larger requests are clamped to the held amount. Sales
// bigger than the market's trade volume are split into several transactions.
func (s *ActionSupport) Sell(ctx context.Context, ship *navigation.Ship, tradeSymbol string, units *int) (*types.ActionResult, error) {
	held := ship.Cargo().GetItemUnits(tradeSymbol)
	if held == 0 {
		return noop(ActionSell, ship, tradeSymbol+" not in cargo"), nil
	}
	if !ship.IsDocked() {
		return noop(ActionSell, ship, "not docked"), nil
	}
	waypoint, err := s.EnsureWaypoint(ctx, ship.WaypointSymbol())
	if err != nil {
		return nil, err
	}
	if !waypoint.IsMarket() {
		return noop(ActionSell, ship, ship.WaypointSymbol()+" is not a marketplace"), nil
	}

	amount := held
	if units != nil {
		amount = utils.Min(*units, held)
	}
	if amount <= 0 {
		return noop(ActionSell, ship, "zero units requested"), nil
	}

	m, err := s.MarketAt(ctx, ship.WaypointSymbol())
	if err != nil {
		return nil, err
	}
	batch := m.GetTransactionLimit(tradeSymbol)
	if batch <= 0 {
		batch = amount
	}

	result := &types.ActionResult{Action: ActionSell, ShipSymbol: ship.Symbol(), Ship: ship}
	for remaining := amount; remaining > 0; {
		n := utils.Min(batch, remaining)
		payload, err := s.apiClient.SellCargo(ctx, ship.Symbol(), tradeSymbol, n)
		if err != nil {
			return nil, fmt.Errorf("failed to sell cargo: %w", err)
		}
		if payload.Rejected() {
			rejected := s.rejected(ctx, ActionSell, ship, payload.Failure)
			rejected.Units = result.Units
			rejected.Transaction = result.Transaction
			return rejected, nil
		}
		if err := s.applyPayload(ctx, ship, payload); err != nil {
			return nil, err
		}
		result.Units += n
		result.Transaction = payload.Transaction
		remaining -= n
	}

	result.Outcome = types.OutcomeApplied
	return finish(result), nil
}

// SellAll sells every held good at the current market, stopping at the
// first rejection.
func (s *ActionSupport) SellAll(ctx context.Context, ship *navigation.Ship) (*types.ActionResult, error) {
	logger := common.LoggerFromContext(ctx)

	if ship.Cargo().IsEmpty() {
		return noop(ActionSellAll, ship, "cargo empty"), nil
	}

	symbols := make([]string, 0, len(ship.Cargo().Inventory))
	for _, item := range ship.Cargo().Inventory {
		symbols = append(symbols, item.Symbol)
	}

	sold := 0
	var last *types.ActionResult
	for _, symbol := range symbols {
		result, err := s.Sell(ctx, ship, symbol, nil)
		if err != nil {
			return nil, err
		}
		if !result.OK() {
			return result, nil
		}
		if result.Applied() {
			sold += result.Units
			logger.Log("INFO", "Cargo sold", map[string]interface{}{
				"ship_symbol": ship.Symbol(),
				"action":      ActionSell,
				"good":        symbol,
				"units":       result.Units,
			})
		}
		last = result
	}

	if sold == 0 {
		return noop(ActionSellAll, ship, last.Reason), nil
	}
	result := applied(ActionSellAll, ship)
	result.Units = sold
	result.Transaction = last.Transaction
	return result, nil
}

// Jettison dumps cargo into space. units nil dumps everything held of the
// good; zero units or a good not held is a no-op.
func (s *ActionSupport) Jettison(ctx context.Context, ship *navigation.Ship, tradeSymbol string, units *int) (*types.ActionResult, error) {
	held := ship.Cargo().GetItemUnits(tradeSymbol)
	if held == 0 {
		return noop(ActionJettison, ship, tradeSymbol+" not in cargo"), nil
	}
	amount := held
	if units != nil {
		amount = utils.Min(*units, held)
	}
	if amount <= 0 {
		return noop(ActionJettison, ship, "zero units requested"), nil
	}

	payload, err := s.apiClient.JettisonCargo(ctx, ship.Symbol(), tradeSymbol, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to jettison cargo: %w", err)
	}
	if payload.Rejected() {
		return s.rejected(ctx, ActionJettison, ship, payload.Failure), nil
	}
	if err := s.applyPayload(ctx, ship, payload); err != nil {
		return nil, err
	}

	result := applied(ActionJettison, ship)
	result.Units = amount
	return result, nil
}

// PurchaseCargoHandler - Handles purchase cargo commands
type PurchaseCargoHandler struct {
	support *ActionSupport
}

// NewPurchaseCargoHandler creates a new purchase cargo handler
func NewPurchaseCargoHandler(support *ActionSupport) *PurchaseCargoHandler {
	return &PurchaseCargoHandler{support: support}
}

// Handle executes the purchase cargo command
func (h *PurchaseCargoHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.PurchaseCargoCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Purchase(ctx, ship, cmd.TradeSymbol, cmd.Units))
}

// SellCargoHandler - Handles sell cargo commands
type SellCargoHandler struct {
	support *ActionSupport
}

// NewSellCargoHandler creates a new sell cargo handler
func NewSellCargoHandler(support *ActionSupport) *SellCargoHandler {
	return &SellCargoHandler{support: support}
}

// Handle executes the sell cargo command
func (h *SellCargoHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.SellCargoCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Sell(ctx, ship, cmd.TradeSymbol, cmd.Units))
}

// SellAllCargoHandler - Handles sell all cargo commands
type SellAllCargoHandler struct {
	support *ActionSupport
}

// NewSellAllCargoHandler creates a new sell all cargo handler
func NewSellAllCargoHandler(support *ActionSupport) *SellAllCargoHandler {
	return &SellAllCargoHandler{support: support}
}

// Handle executes the sell all cargo command
func (h *SellAllCargoHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.SellAllCargoCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.SellAll(ctx, ship))
}

// JettisonCargoHandler - Handles jettison cargo commands
type JettisonCargoHandler struct {
	support *ActionSupport
}

// NewJettisonCargoHandler creates a new jettison cargo handler
func NewJettisonCargoHandler(support *ActionSupport) *JettisonCargoHandler {
	return &JettisonCargoHandler{support: support}
}

// Handle executes the jettison cargo command
func (h *JettisonCargoHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.JettisonCargoCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ship, err := h.support.LoadShip(ctx, cmd.ShipSymbol)
	if err != nil {
		return nil, err
	}
	return respond(h.support.Jettison(ctx, ship, cmd.TradeSymbol, cmd.Units))
}
