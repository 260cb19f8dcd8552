package helpers

import (
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// Epoch is the fixed start time of every fake world
var Epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Fakes bundles a mock server with empty in-memory repositories sharing one clock
type Fakes struct {
	Clock         *shared.MockClock
	API           *MockAPIClient
	Ships         *MockShipRepository
	Markets       *MockMarketRepository
	Transactions  *MockTransactionRepository
	Waypoints     *MockWaypointRepository
	Agents        *MockAgentRepository
	Contracts     *MockContractRepository
	Shipyards     *MockShipyardRepository
	Continuations *MockContinuationRepository
	Scheduler     *MockScheduler
}

// NewFakes creates a fresh fake world at Epoch
func NewFakes() *Fakes {
	clock := shared.NewMockClock(Epoch)
	return &Fakes{
		Clock:         clock,
		API:           NewMockAPIClient(clock),
		Ships:         NewMockShipRepository(),
		Markets:       NewMockMarketRepository(),
		Transactions:  NewMockTransactionRepository(),
		Waypoints:     NewMockWaypointRepository(),
		Agents:        NewMockAgentRepository(),
		Contracts:     NewMockContractRepository(),
		Shipyards:     NewMockShipyardRepository(),
		Continuations: NewMockContinuationRepository(),
		Scheduler:     NewMockScheduler(),
	}
}
