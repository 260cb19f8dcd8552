package helpers

import (
	"context"
	"sync"

	"github.com/ropable/spacetraders-api/internal/domain/behavior"
)

// ScheduledContinuation is one recorded scheduler call
type ScheduledContinuation struct {
	Continuation *behavior.Continuation
	Immediate    bool
}

// MockScheduler records continuations instead of running them
type MockScheduler struct {
	mu        sync.Mutex
	Scheduled []ScheduledContinuation
	Err       error
}

// NewMockScheduler creates an empty recording scheduler
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{}
}

func (m *MockScheduler) ScheduleAt(ctx context.Context, c *behavior.Continuation) error {
	return m.record(c, false)
}

func (m *MockScheduler) ScheduleNow(ctx context.Context, c *behavior.Continuation) error {
	return m.record(c, true)
}

func (m *MockScheduler) record(c *behavior.Continuation, immediate bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Scheduled = append(m.Scheduled, ScheduledContinuation{Continuation: c, Immediate: immediate})
	return nil
}

// Last returns the most recent scheduler call, or nil
func (m *MockScheduler) Last() *ScheduledContinuation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Scheduled) == 0 {
		return nil
	}
	last := m.Scheduled[len(m.Scheduled)-1]
	return &last
}

// Count returns how many continuations were scheduled
func (m *MockScheduler) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Scheduled)
}
