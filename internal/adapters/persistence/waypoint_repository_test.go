package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/adapters/persistence"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/system"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func TestWaypointRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)

	waypoint, err := shared.NewWaypoint("X1-GZ7-A1", 10, -20)
	require.NoError(t, err)
	waypoint.Type = "PLANET"
	waypoint.Orbits = "X1-GZ7-A"
	waypoint.Traits = []string{"MARKETPLACE", "SHIPYARD"}
	waypoint.IsUnderConstruction = true

	// Act - Save
	err = repo.Save(context.Background(), waypoint)

	// Assert
	require.NoError(t, err)

	// Act - FindBySymbol
	found, err := repo.FindBySymbol(context.Background(), "X1-GZ7-A1")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "X1-GZ7", found.SystemSymbol)
	assert.Equal(t, waypoint.Type, found.Type)
	assert.Equal(t, 10, found.X)
	assert.Equal(t, -20, found.Y)
	assert.Equal(t, waypoint.Orbits, found.Orbits)
	assert.Equal(t, waypoint.Traits, found.Traits)
	assert.True(t, found.IsUnderConstruction)
}

func TestWaypointRepository_FindBySymbol_Unknown(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)

	found, err := repo.FindBySymbol(context.Background(), "X1-NOPE-A1")

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestWaypointRepository_SaveReplacesTraits(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-A1", 0, 0, "MARKETPLACE", "SHIPYARD")))
	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-A1", 0, 0, "MARKETPLACE")))

	found, err := repo.FindBySymbol(ctx, "X1-GZ7-A1")
	require.NoError(t, err)
	assert.Equal(t, []string{"MARKETPLACE"}, found.Traits)
}

func TestWaypointRepository_ListBySystem(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-B2", 30, 40)))
	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-A1", 10, 20)))
	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-ABC-C3", 50, 60)))

	// Act
	waypoints, err := repo.ListBySystem(ctx, "X1-GZ7")

	// Assert
	require.NoError(t, err)
	require.Len(t, waypoints, 2)
	assert.Equal(t, "X1-GZ7-A1", waypoints[0].Symbol)
	assert.Equal(t, "X1-GZ7-B2", waypoints[1].Symbol)
}

func TestWaypointRepository_ListByTrait(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-A1", 0, 0, "MARKETPLACE")))
	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-B2", 5, 5, "SHIPYARD", "MARKETPLACE")))
	require.NoError(t, repo.Save(ctx, helpers.Waypoint("X1-GZ7-C3", 9, 9, "MARKETPLACE_RUINS")))

	markets, err := repo.ListByTrait(ctx, "X1-GZ7", "MARKETPLACE")

	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "X1-GZ7-A1", markets[0].Symbol)
	assert.Equal(t, "X1-GZ7-B2", markets[1].Symbol)
}

func TestWaypointRepository_StubRowsAreHidden(t *testing.T) {
	// A market save creates a placeholder waypoint row
	db := helpers.NewTestDB(t)
	waypoints := persistence.NewGormWaypointRepository(db)
	markets := persistence.NewMarketRepository(db)
	ctx := context.Background()

	require.NoError(t, markets.Save(ctx, helpers.BuildMarket("X1-GZ7-M1", helpers.Epoch)))

	found, err := waypoints.FindBySymbol(ctx, "X1-GZ7-M1")
	require.NoError(t, err)
	assert.Nil(t, found)

	listed, err := waypoints.ListBySystem(ctx, "X1-GZ7")
	require.NoError(t, err)
	assert.Empty(t, listed)

	// A later waypoint sync completes it
	require.NoError(t, waypoints.Save(ctx, helpers.Waypoint("X1-GZ7-M1", 3, 4, "MARKETPLACE")))
	found, err = waypoints.FindBySymbol(ctx, "X1-GZ7-M1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 3, found.X)
}

func TestWaypointRepository_SaveAndFindSystem(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormWaypointRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveSystem(ctx, &system.System{Symbol: "X1-GZ7", SectorSymbol: "X1", Type: "RED_STAR", X: 1, Y: 2}))
	require.NoError(t, repo.SaveSystem(ctx, &system.System{Symbol: "X1-GZ7", SectorSymbol: "X1", Type: "BLUE_STAR", X: 1, Y: 2}))

	found, err := repo.FindSystem(ctx, "X1-GZ7")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "BLUE_STAR", found.Type)

	missing, err := repo.FindSystem(ctx, "X1-NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
