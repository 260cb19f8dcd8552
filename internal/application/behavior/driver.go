package behavior

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/ship/commands"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/application/trading/services"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

const (
	// DefaultArrivalBuffer is added to an arrival time before the next step runs
	DefaultArrivalBuffer = time.Second

	// DefaultRandomExportCandidates is how many of the nearest export markets
	// a ship without a good trade may wander to
	DefaultRandomExportCandidates = 10
)

// RandomSource picks an index in [0, n). The driver calls it from every
// ship's timeline, so implementations must be safe for concurrent use.
type RandomSource interface {
	Intn(n int) int
}

// LockedRandom is a seeded RandomSource shared across goroutines
type LockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRandom creates a LockedRandom from seed
func NewLockedRandom(seed int64) *LockedRandom {
	return &LockedRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *LockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Options tunes the behavior driver
type Options struct {
	ArrivalBuffer          time.Duration
	RandomExportCandidates int
}

// Driver runs behavior steps. A step drives one ship through a short
// sequence of actions, then hands the rest of its timeline to the scheduler
// as at most one continuation. It never sleeps.
type Driver struct {
	support       *commands.ActionSupport
	graphs        *services.MarketGraphLoader
	shipRepo      navigation.ShipRepository
	continuations behavior.ContinuationRepository
	scheduler     behavior.Scheduler
	random        RandomSource
	opts          Options
}

// NewDriver creates a behavior driver
func NewDriver(
	support *commands.ActionSupport,
	graphs *services.MarketGraphLoader,
	shipRepo navigation.ShipRepository,
	continuations behavior.ContinuationRepository,
	scheduler behavior.Scheduler,
	random RandomSource,
	opts Options,
) *Driver {
	if opts.ArrivalBuffer <= 0 {
		opts.ArrivalBuffer = DefaultArrivalBuffer
	}
	if opts.RandomExportCandidates <= 0 {
		opts.RandomExportCandidates = DefaultRandomExportCandidates
	}
	return &Driver{
		support:       support,
		graphs:        graphs,
		shipRepo:      shipRepo,
		continuations: continuations,
		scheduler:     scheduler,
		random:        random,
		opts:          opts,
	}
}

// withShipLock runs fn so it cannot interleave with a running step of the
// same ship, when the scheduler serializes ships
func (d *Driver) withShipLock(shipSymbol string, fn func() error) error {
	if locker, ok := d.scheduler.(behavior.ShipLocker); ok {
		return locker.WithShipLock(shipSymbol, fn)
	}
	return fn()
}

// scheduleAt enqueues the next step of action for ship at dueAt
func (d *Driver) scheduleAt(ctx context.Context, result *CycleResult, params map[string]string, dueAt time.Time) error {
	now := d.support.Clock().Now()
	c, err := behavior.NewContinuation(result.ShipSymbol, result.Action, params, dueAt, now)
	if err != nil {
		return err
	}
	if err := d.scheduler.ScheduleAt(ctx, c); err != nil {
		return fmt.Errorf("failed to schedule continuation: %w", err)
	}
	d.scheduled(ctx, result, c, dueAt.Sub(now))
	return nil
}

// scheduleNow enqueues the next step of action for ship immediately
func (d *Driver) scheduleNow(ctx context.Context, result *CycleResult, params map[string]string) error {
	now := d.support.Clock().Now()
	c, err := behavior.NewContinuation(result.ShipSymbol, result.Action, params, now, now)
	if err != nil {
		return err
	}
	if err := d.scheduler.ScheduleNow(ctx, c); err != nil {
		return fmt.Errorf("failed to schedule continuation: %w", err)
	}
	d.scheduled(ctx, result, c, 0)
	return nil
}

func (d *Driver) scheduled(ctx context.Context, result *CycleResult, c *behavior.Continuation, delay time.Duration) {
	result.Outcome = CycleScheduled
	result.Continuation = c
	metrics.RecordContinuationScheduled(string(c.Action), delay.Seconds())
	common.LoggerFromContext(ctx).Log("DEBUG", "Continuation scheduled", map[string]interface{}{
		"ship_symbol":     c.ShipSymbol,
		"action":          string(c.Action),
		"continuation_id": c.ID,
		"due_at":          c.DueAt.Format(time.RFC3339),
	})
}

// abort ends a step on a failed ship action
func (d *Driver) abort(ctx context.Context, result *CycleResult, last *shipTypes.ActionResult) *CycleResult {
	result.Outcome = CycleAborted
	result.Last = last
	if last != nil {
		result.Reason = last.String()
	}
	common.LoggerFromContext(ctx).Log("WARN", "Behavior step aborted", map[string]interface{}{
		"ship_symbol": result.ShipSymbol,
		"action":      string(result.Action),
		"reason":      result.Reason,
	})
	return result
}

// finish stamps the duration and records the step outcome
func (d *Driver) finish(result *CycleResult, started time.Time) *CycleResult {
	result.Duration = time.Since(started)
	metrics.RecordCycle(string(result.Action), string(result.Outcome), result.Duration.Seconds())
	return result
}
