package types

import (
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/ports"
)

// Outcome tags how a ship action ended
type Outcome string

const (
	// OutcomeApplied - the server accepted the action and local state was updated
	OutcomeApplied Outcome = "APPLIED"
	// OutcomeNoop - a local precondition made the action unnecessary or meaningless
	OutcomeNoop Outcome = "NOOP"
	// OutcomeInCooldown - the ship is cooling down; nothing was sent
	OutcomeInCooldown Outcome = "IN_COOLDOWN"
	// OutcomeRejected - the server refused the action
	OutcomeRejected Outcome = "REJECTED"
	// OutcomeInvalidState - the ship's nav status forbids the action
	OutcomeInvalidState Outcome = "INVALID_STATE"
)

// ActionResult is the tagged result of every ship action
type ActionResult struct {
	Action     string
	ShipSymbol string
	Outcome    Outcome

	// Failure is set when Outcome is REJECTED
	Failure *ports.RemoteFailure
	// Reason explains NOOP and INVALID_STATE outcomes
	Reason string
	// CooldownRemaining is set when Outcome is IN_COOLDOWN, or after an extraction
	CooldownRemaining time.Duration

	Ship        *navigation.Ship
	Transaction *market.Transaction
	Arrival     *time.Time
	Units       int
	Yield       *ports.Yield
}

// OK reports whether the workflow may continue: the action was applied or was
// a harmless no-op.
func (r *ActionResult) OK() bool {
	return r != nil && (r.Outcome == OutcomeApplied || r.Outcome == OutcomeNoop)
}

// Applied reports whether the server accepted the action
func (r *ActionResult) Applied() bool {
	return r != nil && r.Outcome == OutcomeApplied
}

// Err converts a non-OK result into an error suitable for aborting a workflow
func (r *ActionResult) Err() error {
	if r.OK() {
		return nil
	}
	return &ActionError{Result: r}
}

func (r *ActionResult) String() string {
	switch r.Outcome {
	case OutcomeRejected:
		return fmt.Sprintf("%s %s: rejected: %s", r.ShipSymbol, r.Action, r.Failure.Message)
	case OutcomeInCooldown:
		return fmt.Sprintf("%s %s: in cooldown for %s", r.ShipSymbol, r.Action, r.CooldownRemaining)
	case OutcomeNoop, OutcomeInvalidState:
		return fmt.Sprintf("%s %s: %s (%s)", r.ShipSymbol, r.Action, r.Outcome, r.Reason)
	default:
		return fmt.Sprintf("%s %s: %s", r.ShipSymbol, r.Action, r.Outcome)
	}
}

// ActionError wraps a non-OK ActionResult
type ActionError struct {
	Result *ActionResult
}

func (e *ActionError) Error() string {
	return e.Result.String()
}

// Unwrap exposes the remote failure, if any
func (e *ActionError) Unwrap() error {
	if e.Result.Failure != nil {
		return e.Result.Failure
	}
	return nil
}
