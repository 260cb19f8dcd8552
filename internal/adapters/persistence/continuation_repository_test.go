package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/adapters/persistence"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func newContinuation(t *testing.T, ship string, action behavior.Action, due time.Time) *behavior.Continuation {
	t.Helper()
	c, err := behavior.NewContinuation(ship, action, nil, due, helpers.Epoch)
	require.NoError(t, err)
	return c
}

func TestContinuationRepository_SaveAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormContinuationRepository(db)
	ctx := context.Background()

	c, err := behavior.NewContinuation("AGENT-1", behavior.ActionExtractUntilFull,
		map[string]string{behavior.ParamTargetResource: "IRON_ORE"}, helpers.Epoch.Add(time.Minute), helpers.Epoch)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, c))
	found, err := repo.FindByID(ctx, c.ID)

	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, behavior.ActionExtractUntilFull, found.Action)
	assert.Equal(t, "IRON_ORE", found.Param(behavior.ParamTargetResource))
	assert.Equal(t, behavior.StatusPending, found.Status)
	assert.True(t, found.DueAt.Equal(c.DueAt))

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestContinuationRepository_ListPendingOrderedByDue(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormContinuationRepository(db)
	ctx := context.Background()

	late := newContinuation(t, "AGENT-1", behavior.ActionTradeCycle, helpers.Epoch.Add(time.Hour))
	early := newContinuation(t, "AGENT-2", behavior.ActionTradeCycle, helpers.Epoch.Add(time.Minute))
	done := newContinuation(t, "AGENT-3", behavior.ActionTradeCycle, helpers.Epoch)
	for _, c := range []*behavior.Continuation{late, early, done} {
		require.NoError(t, repo.Save(ctx, c))
	}
	require.NoError(t, repo.UpdateStatus(ctx, done.ID, behavior.StatusDone, ""))

	pending, err := repo.ListPending(ctx)

	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, early.ID, pending[0].ID)
	assert.Equal(t, late.ID, pending[1].ID)
}

func TestContinuationRepository_UpdateStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormContinuationRepository(db)
	ctx := context.Background()

	c := newContinuation(t, "AGENT-1", behavior.ActionTradeCycle, helpers.Epoch)
	require.NoError(t, repo.Save(ctx, c))

	require.NoError(t, repo.UpdateStatus(ctx, c.ID, behavior.StatusFailed, "refuel rejected"))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, behavior.StatusFailed, found.Status)
	assert.Equal(t, "refuel rejected", found.LastError)

	assert.Error(t, repo.UpdateStatus(ctx, "missing", behavior.StatusDone, ""))
}

func TestContinuationRepository_CancelByShip(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormContinuationRepository(db)
	ctx := context.Background()

	mine := newContinuation(t, "AGENT-1", behavior.ActionTradeCycle, helpers.Epoch.Add(time.Minute))
	other := newContinuation(t, "AGENT-2", behavior.ActionTradeCycle, helpers.Epoch.Add(time.Minute))
	require.NoError(t, repo.Save(ctx, mine))
	require.NoError(t, repo.Save(ctx, other))

	cancelled, err := repo.CancelByShip(ctx, "AGENT-1")

	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, mine.ID, cancelled[0].ID)
	assert.Equal(t, behavior.StatusCancelled, cancelled[0].Status)

	remaining, err := repo.ListPendingByShip(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	others, err := repo.ListPendingByShip(ctx, "AGENT-2")
	require.NoError(t, err)
	assert.Len(t, others, 1)

	again, err := repo.CancelByShip(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestContractRepository_SaveAndList(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormContractRepository(db)
	ctx := context.Background()

	c := &contract.Contract{
		ID:            "contract-1",
		FactionSymbol: "COSMIC",
		Type:          "PROCUREMENT",
		Terms: contract.Terms{
			Deadline: helpers.Epoch.Add(48 * time.Hour),
			Payment:  contract.Payment{OnAccepted: 1000, OnFulfilled: 9000},
			Deliver: []contract.DeliverGood{
				{TradeSymbol: "IRON_ORE", DestinationSymbol: "X1-GZ7-A1", UnitsRequired: 50, UnitsFulfilled: 10},
			},
		},
		Expiration:       helpers.Epoch.Add(24 * time.Hour),
		DeadlineToAccept: helpers.Epoch.Add(24 * time.Hour),
	}
	require.NoError(t, repo.Save(ctx, c))

	c.Accepted = true
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, "contract-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsActive())
	require.Len(t, found.Terms.Deliver, 1)
	assert.Equal(t, 40, found.Terms.Deliver[0].Remaining())
	assert.Equal(t, 9000, found.Terms.Payment.OnFulfilled)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAgentRepository_SaveAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormAgentRepository(db)
	ctx := context.Background()

	agent, err := player.NewAgent("acc-1", "AGENT", "X1-GZ7-A1", "COSMIC", 175000, 2)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, agent))

	agent.ApplyBalance(160000, 0)
	require.NoError(t, repo.Save(ctx, agent))

	found, err := repo.FindBySymbol(ctx, "AGENT")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 160000, found.Credits)
	assert.Equal(t, 2, found.ShipCount)

	missing, err := repo.FindBySymbol(ctx, "NOBODY")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestShipyardRepository_SaveAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormShipyardRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &shipyard.Shipyard{
		WaypointSymbol:  "X1-GZ7-A1",
		ShipTypes:       []string{"SHIP_PROBE", "SHIP_MINING_DRONE"},
		ModificationFee: 500,
	}))

	found, err := repo.FindByWaypoint(ctx, "X1-GZ7-A1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []string{"SHIP_PROBE", "SHIP_MINING_DRONE"}, found.ShipTypes)
	assert.Equal(t, 500, found.ModificationFee)

	missing, err := repo.FindByWaypoint(ctx, "X1-GZ7-B2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
