package grpc_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/adapters/grpc"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func newScheduler(t *testing.T) (*grpc.ContinuationScheduler, *helpers.MockContinuationRepository, *shared.MockClock) {
	t.Helper()
	repo := helpers.NewMockContinuationRepository()
	clock := shared.NewMockClock(helpers.Epoch)
	s := grpc.NewContinuationScheduler(repo, clock, nil)
	s.SetDriftBuffer(0)
	t.Cleanup(s.Stop)
	return s, repo, clock
}

func continuation(t *testing.T, ship string, due time.Time) *behavior.Continuation {
	t.Helper()
	c, err := behavior.NewContinuation(ship, behavior.ActionTradeCycle, nil, due, helpers.Epoch)
	require.NoError(t, err)
	return c
}

func statusOf(repo *helpers.MockContinuationRepository, id string) behavior.Status {
	c, _ := repo.FindByID(context.Background(), id)
	if c == nil {
		return ""
	}
	return c.Status
}

func TestContinuationScheduler_ScheduleNowRunsAndMarksDone(t *testing.T) {
	s, repo, _ := newScheduler(t)
	ran := make(chan string, 1)
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		ran <- c.ShipSymbol
		return nil
	})

	c := continuation(t, "AGENT-1", helpers.Epoch)
	require.NoError(t, s.ScheduleNow(context.Background(), c))

	select {
	case ship := <-ran:
		assert.Equal(t, "AGENT-1", ship)
	case <-time.After(2 * time.Second):
		t.Fatal("continuation did not run")
	}
	assert.Eventually(t, func() bool {
		return statusOf(repo, c.ID) == behavior.StatusDone
	}, 2*time.Second, 10*time.Millisecond)
}

func TestContinuationScheduler_FailureIsRecorded(t *testing.T) {
	s, repo, _ := newScheduler(t)
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		return errors.New("market closed")
	})

	c := continuation(t, "AGENT-1", helpers.Epoch)
	require.NoError(t, s.ScheduleAt(context.Background(), c))

	assert.Eventually(t, func() bool {
		return statusOf(repo, c.ID) == behavior.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)
	found, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "market closed", found.LastError)
}

func TestContinuationScheduler_FutureContinuationStaysPending(t *testing.T) {
	s, repo, _ := newScheduler(t)
	var runs int32
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	c := continuation(t, "AGENT-1", helpers.Epoch.Add(time.Hour))
	require.NoError(t, s.ScheduleAt(context.Background(), c))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
	assert.Equal(t, behavior.StatusPending, statusOf(repo, c.ID))
	assert.Equal(t, 1, s.PendingCount())
}

func TestContinuationScheduler_CancelledContinuationIsSkipped(t *testing.T) {
	s, repo, _ := newScheduler(t)
	var runs int32
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})

	s.SetDriftBuffer(100 * time.Millisecond)

	c := continuation(t, "AGENT-1", helpers.Epoch)
	require.NoError(t, s.ScheduleAt(context.Background(), c))
	_, err := repo.CancelByShip(context.Background(), "AGENT-1")
	require.NoError(t, err)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, s.PendingCount())
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
	assert.Equal(t, behavior.StatusCancelled, statusOf(repo, c.ID))
}

func TestContinuationScheduler_SameShipNeverRunsConcurrently(t *testing.T) {
	s, _, _ := newScheduler(t)
	var active, maxActive int32
	var wg sync.WaitGroup
	wg.Add(3)
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		defer wg.Done()
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, s.ScheduleNow(context.Background(), continuation(t, "AGENT-1", helpers.Epoch)))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("continuations did not finish")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
}

func TestContinuationScheduler_ScheduleAllPendingArmsStored(t *testing.T) {
	s, repo, _ := newScheduler(t)
	ran := make(chan string, 2)
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		ran <- c.ID
		return nil
	})

	overdue := continuation(t, "AGENT-1", helpers.Epoch.Add(-time.Minute))
	future := continuation(t, "AGENT-2", helpers.Epoch.Add(time.Hour))
	require.NoError(t, repo.Save(context.Background(), overdue))
	require.NoError(t, repo.Save(context.Background(), future))

	count, err := s.ScheduleAllPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	select {
	case id := <-ran:
		assert.Equal(t, overdue.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("overdue continuation did not run")
	}
	assert.Equal(t, behavior.StatusPending, statusOf(repo, future.ID))
}

func TestContinuationScheduler_StopCancelsTimers(t *testing.T) {
	repo := helpers.NewMockContinuationRepository()
	s := grpc.NewContinuationScheduler(repo, shared.NewMockClock(helpers.Epoch), nil)
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error { return nil })

	require.NoError(t, s.ScheduleAt(context.Background(), continuation(t, "AGENT-1", helpers.Epoch.Add(time.Hour))))
	require.Equal(t, 1, s.PendingCount())

	s.Stop()
	s.Stop()

	assert.Equal(t, 0, s.PendingCount())
}

func TestContinuationScheduler_WithShipLockWaitsForRunningStep(t *testing.T) {
	s, repo, _ := newScheduler(t)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	s.Bind(func(ctx context.Context, c *behavior.Continuation) error {
		close(entered)
		<-release
		// The step hands the rest of the timeline to a later continuation
		next, err := behavior.NewContinuation(c.ShipSymbol, behavior.ActionTradeCycle, nil, helpers.Epoch.Add(time.Hour), helpers.Epoch)
		if err != nil {
			return err
		}
		return s.ScheduleAt(ctx, next)
	})

	require.NoError(t, s.ScheduleNow(ctx, continuation(t, "AGENT-1", helpers.Epoch)))
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("continuation did not run")
	}

	restarted := continuation(t, "AGENT-1", helpers.Epoch.Add(time.Minute))
	done := make(chan error, 1)
	go func() {
		done <- s.WithShipLock("AGENT-1", func() error {
			if _, err := repo.CancelByShip(ctx, "AGENT-1"); err != nil {
				return err
			}
			return repo.Save(ctx, restarted)
		})
	}()

	select {
	case <-done:
		t.Fatal("ship lock was taken while a step was running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ship lock was never released")
	}

	pending, err := repo.ListPendingByShip(ctx, "AGENT-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, restarted.ID, pending[0].ID)
}
