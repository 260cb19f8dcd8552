package queries

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// GetShipQuery represents a query for one cached ship
type GetShipQuery struct {
	ShipSymbol string
}

// GetShipResponse carries the ship and nav timing derived from the canonical clock
type GetShipResponse struct {
	Ship              *navigation.Ship
	TimeUntilArrival  float64 // seconds
	CooldownRemaining float64 // seconds
}

// GetShipHandler handles the GetShip query
type GetShipHandler struct {
	shipRepo navigation.ShipRepository
	clock    shared.Clock
}

// NewGetShipHandler creates a new GetShipHandler
func NewGetShipHandler(shipRepo navigation.ShipRepository, clock shared.Clock) *GetShipHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GetShipHandler{shipRepo: shipRepo, clock: clock}
}

// Handle executes the GetShip query
func (h *GetShipHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetShipQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetShipQuery")
	}

	ship, err := h.shipRepo.FindBySymbol(ctx, query.ShipSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship: %w", err)
	}
	if ship == nil {
		return nil, fmt.Errorf("ship %s not found; run sync ships first", query.ShipSymbol)
	}

	now := h.clock.Now()
	return &GetShipResponse{
		Ship:              ship,
		TimeUntilArrival:  ship.TimeUntilArrival(now).Seconds(),
		CooldownRemaining: ship.CooldownRemaining(now).Seconds(),
	}, nil
}
