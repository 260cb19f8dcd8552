package player

import (
	"context"
	"fmt"
)

// Agent is the player's account in the game universe
type Agent struct {
	AccountID       string
	Symbol          string
	Headquarters    string
	Credits         int
	StartingFaction string
	ShipCount       int
}

// NewAgent creates an agent with validation
func NewAgent(accountID, symbol, headquarters, faction string, credits, shipCount int) (*Agent, error) {
	if symbol == "" {
		return nil, fmt.Errorf("agent symbol cannot be empty")
	}
	return &Agent{
		AccountID:       accountID,
		Symbol:          symbol,
		Headquarters:    headquarters,
		Credits:         credits,
		StartingFaction: faction,
		ShipCount:       shipCount,
	}, nil
}

// ApplyBalance updates the fields every trade payload carries
func (a *Agent) ApplyBalance(credits, shipCount int) {
	a.Credits = credits
	if shipCount > 0 {
		a.ShipCount = shipCount
	}
}

// AgentRepository persists the local agent record
type AgentRepository interface {
	FindBySymbol(ctx context.Context, symbol string) (*Agent, error)
	Save(ctx context.Context, agent *Agent) error
}
