package setup_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/setup"
	shipQuery "github.com/ropable/spacetraders-api/internal/application/ship/queries"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/test/helpers"
)

type unknownRequest struct{}

func newMediator(t *testing.T, fakes *helpers.Fakes) mediator.Mediator {
	t.Helper()
	registry := setup.NewHandlerRegistry(fakes.API, setup.Repositories{
		Ships:         fakes.Ships,
		Markets:       fakes.Markets,
		Transactions:  fakes.Transactions,
		Waypoints:     fakes.Waypoints,
		Agents:        fakes.Agents,
		Contracts:     fakes.Contracts,
		Shipyards:     fakes.Shipyards,
		Continuations: fakes.Continuations,
	}, fakes.Clock, fakes.Scheduler, rand.New(rand.NewSource(1)), setup.Options{})

	med, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)
	require.NotNil(t, registry.GraphLoader())
	return med
}

func TestHandlerRegistry_RoutesShipCommands(t *testing.T) {
	// Arrange
	fakes := helpers.NewFakes()
	wp := helpers.Waypoint("X1-TEST-A1", 0, 0, shared.TraitMarketplace)
	fakes.API.AddWaypoint(wp)
	require.NoError(t, fakes.Waypoints.Save(context.Background(), wp))
	ship := helpers.MustShip(t, helpers.ShipFixture{Symbol: "AGENT-1", Waypoint: "X1-TEST-A1", Fuel: 100, CargoCapacity: 40})
	fakes.API.AddShip(ship)
	require.NoError(t, fakes.Ships.Save(context.Background(), ship))
	med := newMediator(t, fakes)

	// Act
	response, err := med.Send(context.Background(), &shipTypes.OrbitShipCommand{ShipSymbol: "AGENT-1"})

	// Assert
	require.NoError(t, err)
	result, ok := response.(*shipTypes.ActionResult)
	require.True(t, ok, "unexpected response type %T", response)
	assert.Equal(t, shipTypes.OutcomeApplied, result.Outcome)

	response, err = med.Send(context.Background(), &shipQuery.GetShipQuery{ShipSymbol: "AGENT-1"})
	require.NoError(t, err)
	got, ok := response.(*shipQuery.GetShipResponse)
	require.True(t, ok, "unexpected response type %T", response)
	assert.Equal(t, navigation.NavStatusInOrbit, got.Ship.NavStatus())
}

func TestHandlerRegistry_RejectsUnregisteredRequests(t *testing.T) {
	med := newMediator(t, helpers.NewFakes())

	_, err := med.Send(context.Background(), &unknownRequest{})

	assert.Error(t, err)
}

func TestHandlerRegistry_AppliesMiddlewares(t *testing.T) {
	fakes := helpers.NewFakes()
	registry := setup.NewHandlerRegistry(fakes.API, setup.Repositories{
		Ships:         fakes.Ships,
		Markets:       fakes.Markets,
		Transactions:  fakes.Transactions,
		Waypoints:     fakes.Waypoints,
		Agents:        fakes.Agents,
		Contracts:     fakes.Contracts,
		Shipyards:     fakes.Shipyards,
		Continuations: fakes.Continuations,
	}, fakes.Clock, fakes.Scheduler, rand.New(rand.NewSource(1)), setup.Options{})

	var seen []string
	recorder := func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		seen = append(seen, "before")
		response, err := next(ctx, request)
		seen = append(seen, "after")
		return response, err
	}
	med, err := registry.CreateConfiguredMediator(recorder)
	require.NoError(t, err)

	_, _ = med.Send(context.Background(), &shipQuery.ListShipsQuery{})

	assert.Equal(t, []string{"before", "after"}, seen)
}
