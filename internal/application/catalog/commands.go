package catalog

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
)

// SyncAgentCommand - Command to refresh the agent record
type SyncAgentCommand struct{}

// SyncAgentResponse carries the refreshed agent
type SyncAgentResponse struct {
	Agent *player.Agent
}

// SyncSystemCommand - Command to cache a system's waypoints, optionally with
// its markets and shipyards
type SyncSystemCommand struct {
	SystemSymbol string
	Markets      bool
	Shipyards    bool
}

// SyncShipsCommand - Command to refresh every ship of the agent
type SyncShipsCommand struct{}

// SyncShipsResponse carries the refreshed ships
type SyncShipsResponse struct {
	Ships []*navigation.Ship
}

// SyncContractsCommand - Command to refresh every contract of the agent
type SyncContractsCommand struct{}

// SyncAllCommand - Command to refresh everything. Empty Systems means the
// headquarters system plus every system a ship is in.
type SyncAllCommand struct {
	Systems []string
}

// SyncAgentHandler - Handles agent sync commands
type SyncAgentHandler struct {
	service *Service
}

// NewSyncAgentHandler creates a new agent sync handler
func NewSyncAgentHandler(service *Service) *SyncAgentHandler {
	return &SyncAgentHandler{service: service}
}

// Handle executes the agent sync command
func (h *SyncAgentHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*SyncAgentCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	agent, err := h.service.SyncAgent(ctx)
	if err != nil {
		return nil, err
	}
	return &SyncAgentResponse{Agent: agent}, nil
}

// SyncSystemHandler - Handles system sync commands
type SyncSystemHandler struct {
	service *Service
}

// NewSyncSystemHandler creates a new system sync handler
func NewSyncSystemHandler(service *Service) *SyncSystemHandler {
	return &SyncSystemHandler{service: service}
}

// Handle executes the system sync command
func (h *SyncSystemHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SyncSystemCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.SystemSymbol == "" {
		return nil, fmt.Errorf("system symbol is required")
	}
	return h.service.SyncSystem(ctx, cmd.SystemSymbol, cmd.Markets, cmd.Shipyards)
}

// SyncShipsHandler - Handles ship sync commands
type SyncShipsHandler struct {
	service *Service
}

// NewSyncShipsHandler creates a new ship sync handler
func NewSyncShipsHandler(service *Service) *SyncShipsHandler {
	return &SyncShipsHandler{service: service}
}

// Handle executes the ship sync command
func (h *SyncShipsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*SyncShipsCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	ships, err := h.service.SyncShips(ctx)
	if err != nil {
		return nil, err
	}
	return &SyncShipsResponse{Ships: ships}, nil
}

// SyncContractsHandler - Handles contract sync commands
type SyncContractsHandler struct {
	service *Service
}

// NewSyncContractsHandler creates a new contract sync handler
func NewSyncContractsHandler(service *Service) *SyncContractsHandler {
	return &SyncContractsHandler{service: service}
}

// Handle executes the contract sync command
func (h *SyncContractsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*SyncContractsCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	n, err := h.service.SyncContracts(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{Contracts: n}, nil
}

// SyncAllHandler - Handles full sync commands
type SyncAllHandler struct {
	service *Service
}

// NewSyncAllHandler creates a new full sync handler
func NewSyncAllHandler(service *Service) *SyncAllHandler {
	return &SyncAllHandler{service: service}
}

// Handle executes the full sync command
func (h *SyncAllHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*SyncAllCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.service.SyncAll(ctx, cmd.Systems)
}
