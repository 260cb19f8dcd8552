package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// ClockDriftBuffer accounts for slight time differences between API server and local clock.
// Ensures a continuation never fires before the API considers the ship arrived.
const ClockDriftBuffer = 1 * time.Second

// SweeperInterval is how often the background sweeper looks for due continuations
// that have no armed timer (failed saves, restarts, clock drift).
const SweeperInterval = 60 * time.Second

// RunFunc resumes one continuation. The scheduler records the returned error.
type RunFunc func(ctx context.Context, c *behavior.Continuation) error

// ContinuationScheduler persists continuations and fires them with time.AfterFunc
// at their due time. Zero CPU usage between events (no polling).
// Continuations of the same ship never run concurrently.
type ContinuationScheduler struct {
	repo   behavior.ContinuationRepository
	clock  shared.Clock
	logger common.Logger
	buffer time.Duration
	run    RunFunc

	timers    map[string]*time.Timer // key: continuation ID
	shipLocks map[string]*sync.Mutex
	mu        sync.Mutex
	wg        sync.WaitGroup
	stopCh    chan struct{}
	stopped   bool
}

// NewContinuationScheduler creates a scheduler backed by repo.
// Bind must be called before any continuation fires.
func NewContinuationScheduler(repo behavior.ContinuationRepository, clock shared.Clock, logger common.Logger) *ContinuationScheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}
	return &ContinuationScheduler{
		repo:      repo,
		clock:     clock,
		logger:    logger,
		buffer:    ClockDriftBuffer,
		timers:    make(map[string]*time.Timer),
		shipLocks: make(map[string]*sync.Mutex),
		stopCh:    make(chan struct{}),
	}
}

// Bind sets the function that resumes a fired continuation
func (s *ContinuationScheduler) Bind(run RunFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = run
}

// SetDriftBuffer overrides the delay added to every timer
func (s *ContinuationScheduler) SetDriftBuffer(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = d
}

// ScheduleAt persists c and arms a timer for its due time
func (s *ContinuationScheduler) ScheduleAt(ctx context.Context, c *behavior.Continuation) error {
	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to persist continuation: %w", err)
	}
	s.arm(c.ID, shared.Until(s.clock, c.DueAt), true)
	return nil
}

// ScheduleNow persists c and fires it without waiting
func (s *ContinuationScheduler) ScheduleNow(ctx context.Context, c *behavior.Continuation) error {
	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to persist continuation: %w", err)
	}
	s.arm(c.ID, 0, false)
	return nil
}

func (s *ContinuationScheduler) arm(id string, delay time.Duration, buffered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if buffered {
		delay += s.buffer
	}

	// Replace an existing timer for the same continuation
	if existing, ok := s.timers[id]; ok {
		existing.Stop()
	}

	s.timers[id] = time.AfterFunc(delay, func() {
		s.fire(id)
	})
}

// fire reloads the continuation and runs it if it is still pending
func (s *ContinuationScheduler) fire(id string) {
	s.mu.Lock()
	delete(s.timers, id)
	if s.stopped {
		s.mu.Unlock()
		return
	}
	run := s.run
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx := context.Background()

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Log("WARN", "failed to load continuation", map[string]interface{}{
			"continuation_id": id,
			"error":           err.Error(),
		})
		return
	}
	if c == nil || c.Status != behavior.StatusPending {
		return
	}

	lock := s.shipLock(c.ShipSymbol)
	lock.Lock()
	defer lock.Unlock()

	// The ship may have been stopped while this timer waited for the lock
	c, err = s.repo.FindByID(ctx, id)
	if err != nil || c == nil || c.Status != behavior.StatusPending {
		return
	}

	if run == nil {
		s.logger.Log("ERROR", "continuation fired with no runner bound", map[string]interface{}{
			"continuation_id": id,
		})
		return
	}

	if err := s.repo.UpdateStatus(ctx, id, behavior.StatusRunning, ""); err != nil {
		s.logger.Log("WARN", "failed to mark continuation running", map[string]interface{}{
			"continuation_id": id,
			"error":           err.Error(),
		})
		return
	}

	s.logger.Log("INFO", "resuming continuation", map[string]interface{}{
		"continuation_id": id,
		"ship_symbol":     c.ShipSymbol,
		"action":          string(c.Action),
	})

	if runErr := run(ctx, c); runErr != nil {
		s.logger.Log("ERROR", "continuation failed", map[string]interface{}{
			"continuation_id": id,
			"ship_symbol":     c.ShipSymbol,
			"error":           runErr.Error(),
		})
		if err := s.repo.UpdateStatus(ctx, id, behavior.StatusFailed, runErr.Error()); err != nil {
			s.logger.Log("WARN", "failed to mark continuation failed", map[string]interface{}{
				"continuation_id": id,
				"error":           err.Error(),
			})
		}
		return
	}

	if err := s.repo.UpdateStatus(ctx, id, behavior.StatusDone, ""); err != nil {
		s.logger.Log("WARN", "failed to mark continuation done", map[string]interface{}{
			"continuation_id": id,
			"error":           err.Error(),
		})
	}
}

func (s *ContinuationScheduler) shipLock(shipSymbol string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.shipLocks[shipSymbol]
	if !ok {
		lock = &sync.Mutex{}
		s.shipLocks[shipSymbol] = lock
	}
	return lock
}

// WithShipLock runs fn under the lock fire holds while a continuation of the
// same ship runs
func (s *ContinuationScheduler) WithShipLock(shipSymbol string, fn func() error) error {
	lock := s.shipLock(shipSymbol)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// ScheduleAllPending arms timers for every pending continuation.
// Called on daemon startup. Overdue continuations fire immediately.
func (s *ContinuationScheduler) ScheduleAllPending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending continuations: %w", err)
	}
	for _, c := range pending {
		s.arm(c.ID, shared.Until(s.clock, c.DueAt), true)
	}
	if len(pending) > 0 {
		s.logger.Log("INFO", "rescheduled pending continuations", map[string]interface{}{
			"count": len(pending),
		})
	}
	return len(pending), nil
}

// CancelAll stops all armed timers. Continuations stay pending in the repository.
func (s *ContinuationScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// PendingCount returns the number of armed timers
func (s *ContinuationScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// StartBackgroundSweeper starts a goroutine that periodically arms due
// continuations that have no timer.
func (s *ContinuationScheduler) StartBackgroundSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = SweeperInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
	s.logger.Log("INFO", "background sweeper started", map[string]interface{}{
		"interval": interval.String(),
	})
}

func (s *ContinuationScheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Log("WARN", "sweeper failed to list pending continuations", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	now := s.clock.Now()
	armed := 0
	for _, c := range pending {
		if !c.IsDue(now) || s.isArmed(c.ID) {
			continue
		}
		s.arm(c.ID, 0, false)
		armed++
	}
	if armed > 0 {
		s.logger.Log("INFO", "sweeper armed stuck continuations", map[string]interface{}{
			"count": armed,
		})
	}
}

func (s *ContinuationScheduler) isArmed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Stop stops the sweeper, cancels all timers and waits for running continuations
func (s *ContinuationScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.CancelAll()
	s.wg.Wait()
}

var (
	_ behavior.Scheduler  = (*ContinuationScheduler)(nil)
	_ behavior.ShipLocker = (*ContinuationScheduler)(nil)
)
