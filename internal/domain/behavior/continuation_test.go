package behavior_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/domain/behavior"
)

func TestNewContinuation(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(90 * time.Second)

	c, err := behavior.NewContinuation("AGENT-1", behavior.ActionExtractUntilFull,
		map[string]string{behavior.ParamTargetResource: "IRON_ORE"}, due, now)

	require.NoError(t, err)
	assert.Equal(t, behavior.StatusPending, c.Status)
	assert.Equal(t, "IRON_ORE", c.Param(behavior.ParamTargetResource))
	assert.False(t, c.IsDue(now))
	assert.True(t, c.IsDue(due))
	assert.Contains(t, c.ID, "extract_until_full-AGENT-1-")
}

func TestNewContinuation_Validation(t *testing.T) {
	now := time.Now()
	_, err := behavior.NewContinuation("", behavior.ActionTradeCycle, nil, now, now)
	assert.Error(t, err)

	_, err = behavior.NewContinuation("AGENT-1", behavior.Action("DANCE"), nil, now, now)
	assert.EqualError(t, err, "unknown behavior action: DANCE")

	c, err := behavior.NewContinuation("AGENT-1", behavior.ActionTradeCycle, nil, now, now)
	require.NoError(t, err)
	assert.NotNil(t, c.Params)
}
