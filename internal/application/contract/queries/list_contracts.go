package queries

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
)

// ListContractsQuery lists cached contracts. ActiveOnly keeps accepted,
// unfulfilled ones.
type ListContractsQuery struct {
	ActiveOnly bool
}

// ListContractsResponse contains the matching contracts
type ListContractsResponse struct {
	Contracts []*contract.Contract
}

// ListContractsHandler handles the ListContracts query
type ListContractsHandler struct {
	contractRepo contract.ContractRepository
}

// NewListContractsHandler creates a new ListContractsHandler
func NewListContractsHandler(contractRepo contract.ContractRepository) *ListContractsHandler {
	return &ListContractsHandler{contractRepo: contractRepo}
}

// Handle executes the ListContracts query
func (h *ListContractsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListContractsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListContractsQuery")
	}

	all, err := h.contractRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	if !query.ActiveOnly {
		return &ListContractsResponse{Contracts: all}, nil
	}

	active := make([]*contract.Contract, 0, len(all))
	for _, c := range all {
		if c.IsActive() {
			active = append(active, c)
		}
	}
	return &ListContractsResponse{Contracts: active}, nil
}
