package behavior

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/pkg/utils"
)

// Action names the behavior step a continuation resumes
type Action string

const (
	ActionTradeCycle       Action = "TRADE_CYCLE"
	ActionExtractUntilFull Action = "EXTRACT_UNTIL_FULL"
)

// ParseAction validates an action name
func ParseAction(value string) (Action, error) {
	switch a := Action(value); a {
	case ActionTradeCycle, ActionExtractUntilFull:
		return a, nil
	default:
		return "", fmt.Errorf("unknown behavior action: %s", value)
	}
}

// Status is the lifecycle state of a continuation
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusDone      Status = "DONE"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// ParamTargetResource is the cargo symbol extract-until-full keeps
const ParamTargetResource = "target_resource"

// Continuation is a serializable "resume this ship's behavior at DueAt" record.
// A behavior step runs to completion and then enqueues at most one of these.
type Continuation struct {
	ID         string
	ShipSymbol string
	Action     Action
	Params     map[string]string
	DueAt      time.Time
	Status     Status
	CreatedAt  time.Time
	LastError  string
}

// NewContinuation creates a pending continuation due at dueAt
func NewContinuation(shipSymbol string, action Action, params map[string]string, dueAt, now time.Time) (*Continuation, error) {
	if shipSymbol == "" {
		return nil, fmt.Errorf("ship symbol cannot be empty")
	}
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]string{}
	}
	return &Continuation{
		ID:         utils.GenerateContinuationID(string(action), shipSymbol),
		ShipSymbol: shipSymbol,
		Action:     action,
		Params:     params,
		DueAt:      dueAt.UTC(),
		Status:     StatusPending,
		CreatedAt:  now.UTC(),
	}, nil
}

// IsDue reports whether the continuation should fire at now
func (c *Continuation) IsDue(now time.Time) bool {
	return !now.Before(c.DueAt)
}

// Param returns a parameter value or ""
func (c *Continuation) Param(key string) string {
	return c.Params[key]
}

func (c *Continuation) String() string {
	return fmt.Sprintf("Continuation(%s %s %s due %s)", c.ID, c.ShipSymbol, c.Action, c.DueAt.Format(time.RFC3339))
}

// Scheduler enqueues continuations. Fire-and-forget, at-least-once.
type Scheduler interface {
	ScheduleAt(ctx context.Context, c *Continuation) error
	ScheduleNow(ctx context.Context, c *Continuation) error
}

// ShipLocker is implemented by schedulers that serialize each ship's
// continuations. WithShipLock runs fn while no step of that ship is running.
type ShipLocker interface {
	WithShipLock(shipSymbol string, fn func() error) error
}

// ContinuationRepository persists continuations so they survive a restart
type ContinuationRepository interface {
	Save(ctx context.Context, c *Continuation) error
	FindByID(ctx context.Context, id string) (*Continuation, error)
	ListPending(ctx context.Context) ([]*Continuation, error)
	ListPendingByShip(ctx context.Context, shipSymbol string) ([]*Continuation, error)
	UpdateStatus(ctx context.Context, id string, status Status, lastError string) error
	// CancelByShip cancels every pending continuation of a ship and returns them
	CancelByShip(ctx context.Context, shipSymbol string) ([]*Continuation, error)
}
