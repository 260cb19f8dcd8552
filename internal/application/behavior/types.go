package behavior

import (
	"time"

	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// TradeCycleCommand runs one step of the trade loop for a ship
type TradeCycleCommand struct {
	ShipSymbol string
}

// ExtractUntilFullCommand runs one extraction step. A non-empty
// TargetResource makes every other yield get jettisoned.
type ExtractUntilFullCommand struct {
	ShipSymbol     string
	TargetResource string
}

// ResumeContinuationCommand runs the step a fired continuation names
type ResumeContinuationCommand struct {
	Continuation *behavior.Continuation
}

// StartBehaviorCommand annotates a ship with a behavior and schedules its
// first step immediately
type StartBehaviorCommand struct {
	ShipSymbol     string
	Behavior       navigation.Behavior
	TargetResource string
}

// StopBehaviorCommand cancels a ship's pending continuations and clears its behavior
type StopBehaviorCommand struct {
	ShipSymbol string
}

// CycleOutcome tags how a behavior step ended
type CycleOutcome string

const (
	// CycleScheduled - the step finished and enqueued its continuation
	CycleScheduled CycleOutcome = "SCHEDULED"
	// CycleCompleted - the behavior reached its goal; nothing was enqueued
	CycleCompleted CycleOutcome = "COMPLETED"
	// CycleAborted - an action failed; nothing was enqueued
	CycleAborted CycleOutcome = "ABORTED"
	// CycleSkipped - the ship no longer wants this behavior
	CycleSkipped CycleOutcome = "SKIPPED"
)

// CycleResult reports one behavior step
type CycleResult struct {
	ShipSymbol string
	Action     behavior.Action
	Outcome    CycleOutcome
	Reason     string

	// Last is the ship action that ended the step
	Last *shipTypes.ActionResult
	// Continuation is set when Outcome is SCHEDULED
	Continuation *behavior.Continuation
	Duration     time.Duration
}

// StopBehaviorResponse lists the continuations withdrawn by a stop
type StopBehaviorResponse struct {
	ShipSymbol string
	Cancelled  []*behavior.Continuation
}

// StartBehaviorResponse carries the first continuation of a started behavior
type StartBehaviorResponse struct {
	ShipSymbol   string
	Behavior     navigation.Behavior
	Continuation *behavior.Continuation
}
