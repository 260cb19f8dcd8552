package queries

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
)

// GetShipyardListingsQuery is a query to get the ship types sold at a shipyard.
// Refresh skips the cache and fetches the live listing.
type GetShipyardListingsQuery struct {
	WaypointSymbol string
	Refresh        bool
}

// GetShipyardListingsResponse contains the shipyard data
type GetShipyardListingsResponse struct {
	Shipyard *shipyard.Shipyard
	Cached   bool
}

// GetShipyardListingsHandler handles the GetShipyardListings query
type GetShipyardListingsHandler struct {
	apiClient    domainPorts.APIClient
	shipyardRepo shipyard.ShipyardRepository
}

// NewGetShipyardListingsHandler creates a new GetShipyardListingsHandler
func NewGetShipyardListingsHandler(apiClient domainPorts.APIClient, shipyardRepo shipyard.ShipyardRepository) *GetShipyardListingsHandler {
	return &GetShipyardListingsHandler{apiClient: apiClient, shipyardRepo: shipyardRepo}
}

// Handle executes the GetShipyardListings query
func (h *GetShipyardListingsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetShipyardListingsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	if !query.Refresh {
		cached, err := h.shipyardRepo.FindByWaypoint(ctx, query.WaypointSymbol)
		if err != nil {
			return nil, fmt.Errorf("failed to load shipyard: %w", err)
		}
		if cached != nil {
			return &GetShipyardListingsResponse{Shipyard: cached, Cached: true}, nil
		}
	}

	live, err := h.apiClient.GetShipyard(ctx, query.WaypointSymbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get shipyard: %w", err)
	}
	if err := h.shipyardRepo.Save(ctx, live); err != nil {
		return nil, fmt.Errorf("failed to save shipyard: %w", err)
	}
	return &GetShipyardListingsResponse{Shipyard: live}, nil
}
