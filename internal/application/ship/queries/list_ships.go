package queries

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// ListShipsQuery represents a query to list cached ships
type ListShipsQuery struct {
	Behavior navigation.Behavior // Optional: only ships annotated with this behavior
}

// ListShipsResponse represents the result of listing ships
type ListShipsResponse struct {
	Ships []*navigation.Ship
}

// ListShipsHandler handles the ListShips query
type ListShipsHandler struct {
	shipRepo navigation.ShipRepository
}

// NewListShipsHandler creates a new ListShipsHandler
func NewListShipsHandler(shipRepo navigation.ShipRepository) *ListShipsHandler {
	return &ListShipsHandler{shipRepo: shipRepo}
}

// Handle executes the ListShips query
func (h *ListShipsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListShipsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListShipsQuery")
	}

	var (
		ships []*navigation.Ship
		err   error
	)
	if query.Behavior != "" {
		ships, err = h.shipRepo.ListByBehavior(ctx, query.Behavior)
	} else {
		ships, err = h.shipRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}

	return &ListShipsResponse{Ships: ships}, nil
}
