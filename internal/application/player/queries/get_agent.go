package queries

import (
	"context"
	"fmt"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
)

// GetAgentQuery represents a query to get the local agent record.
// An empty AgentSymbol or Refresh always asks the server.
type GetAgentQuery struct {
	AgentSymbol string
	Refresh     bool
}

// GetAgentResponse represents the result of getting the agent
type GetAgentResponse struct {
	Agent  *player.Agent
	Cached bool
}

// GetAgentHandler handles the GetAgent query
type GetAgentHandler struct {
	agentRepo player.AgentRepository
	apiClient domainPorts.APIClient
}

// NewGetAgentHandler creates a new GetAgentHandler
func NewGetAgentHandler(agentRepo player.AgentRepository, apiClient domainPorts.APIClient) *GetAgentHandler {
	return &GetAgentHandler{
		agentRepo: agentRepo,
		apiClient: apiClient,
	}
}

// Handle executes the GetAgent query
func (h *GetAgentHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetAgentQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetAgentQuery")
	}

	if query.AgentSymbol != "" && !query.Refresh {
		agent, err := h.agentRepo.FindBySymbol(ctx, query.AgentSymbol)
		if err != nil {
			return nil, fmt.Errorf("failed to find agent: %w", err)
		}
		if agent != nil {
			return &GetAgentResponse{Agent: agent, Cached: true}, nil
		}
	}

	agent, err := h.apiClient.GetAgent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch agent from API: %w", err)
	}
	if err := h.agentRepo.Save(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to save agent: %w", err)
	}
	return &GetAgentResponse{Agent: agent}, nil
}
