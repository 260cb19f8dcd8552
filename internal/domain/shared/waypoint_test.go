package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, shared.Distance(shared.Coordinates{X: 0, Y: 0}, shared.Coordinates{X: 3, Y: 4}))
	assert.Equal(t, 0.0, shared.Distance(shared.Coordinates{X: 7, Y: -2}, shared.Coordinates{X: 7, Y: -2}))
}

func TestNewWaypoint_InfersSystem(t *testing.T) {
	wp, err := shared.NewWaypoint("X1-GZ7-A1", 10, 20)
	require.NoError(t, err)

	assert.Equal(t, "X1-GZ7", wp.SystemSymbol)
	assert.Equal(t, shared.Coordinates{X: 10, Y: 20}, wp.Coordinates())

	_, err = shared.NewWaypoint("", 0, 0)
	assert.Error(t, err)
}

func TestWaypoint_Traits(t *testing.T) {
	wp, err := shared.NewWaypoint("X1-GZ7-A1", 0, 0)
	require.NoError(t, err)
	wp.Traits = []string{shared.TraitMarketplace}

	assert.True(t, wp.IsMarket())
	assert.False(t, wp.IsShipyard())
}

func TestExtractSystemSymbol(t *testing.T) {
	assert.Equal(t, "X1-AB12", shared.ExtractSystemSymbol("X1-AB12-C3D4"))
	assert.Equal(t, "NOHYPHEN", shared.ExtractSystemSymbol("NOHYPHEN"))
}
