package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/application/catalog"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func newService(t *testing.T) (*helpers.Fakes, *catalog.Service) {
	t.Helper()
	fakes := helpers.NewFakes()
	fakes.API.AddWaypoint(
		helpers.Waypoint("X1-TEST-A1", 0, 0, shared.TraitMarketplace, shared.TraitShipyard),
		helpers.Waypoint("X1-TEST-B2", 10, 0, shared.TraitMarketplace),
		helpers.Waypoint("X1-TEST-C3", 0, 30),
	)
	fakes.API.SetMarket(helpers.BuildMarket("X1-TEST-A1", helpers.Epoch,
		helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleExport, PurchasePrice: 12, SellPrice: 10, TradeVolume: 20}))
	fakes.API.SetMarket(helpers.BuildMarket("X1-TEST-B2", helpers.Epoch,
		helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleImport, PurchasePrice: 50, SellPrice: 45, TradeVolume: 20}))
	fakes.API.SetShipyard(&shipyard.Shipyard{WaypointSymbol: "X1-TEST-A1", ShipTypes: []string{"SHIP_MINING_DRONE"}})

	service := catalog.NewService(fakes.API, fakes.Agents, fakes.Waypoints, fakes.Markets,
		fakes.Shipyards, fakes.Contracts, fakes.Ships, 2)
	return fakes, service
}

func TestSyncSystem_CachesWaypointsMarketsAndShipyards(t *testing.T) {
	fakes, service := newService(t)

	report, err := service.SyncSystem(context.Background(), "X1-TEST", true, true)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Waypoints)
	assert.Equal(t, 2, report.Markets)
	assert.Equal(t, 1, report.Shipyards)

	assert.Contains(t, fakes.Waypoints.Systems, "X1-TEST")
	assert.Len(t, fakes.Waypoints.Waypoints, 3)
	assert.Contains(t, fakes.Markets.Markets, "X1-TEST-A1")
	assert.Contains(t, fakes.Markets.Markets, "X1-TEST-B2")
	assert.Contains(t, fakes.Markets.Catalog, "IRON_ORE")
	assert.Contains(t, fakes.Shipyards.Shipyards, "X1-TEST-A1")
}

func TestSyncSystem_WaypointsOnly(t *testing.T) {
	fakes, service := newService(t)

	report, err := service.SyncSystem(context.Background(), "X1-TEST", false, false)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Waypoints)
	assert.Zero(t, fakes.API.CallCount(helpers.CallGetMarket))
	assert.Zero(t, fakes.API.CallCount(helpers.CallGetShipyard))
}

func TestSyncMarkets_PropagatesFetchFailure(t *testing.T) {
	fakes, service := newService(t)
	_, err := service.SyncSystem(context.Background(), "X1-TEST", false, false)
	require.NoError(t, err)

	boom := errors.New("connection reset")
	fakes.API.ErrorNext(helpers.CallGetMarket, boom)

	_, err = service.SyncMarkets(context.Background(), "X1-TEST")
	assert.ErrorIs(t, err, boom)
}

func TestSyncShips_KeepsLocalBehavior(t *testing.T) {
	fakes, service := newService(t)
	ctx := context.Background()

	fakes.API.AddShip(helpers.MustShip(t, helpers.ShipFixture{Symbol: "AGENT-1", Waypoint: "X1-TEST-B2", Fuel: 80, FuelCapacity: 100}))
	cached := helpers.MustShip(t, helpers.ShipFixture{
		Symbol:       "AGENT-1",
		Waypoint:     "X1-TEST-A1",
		Fuel:         100,
		FuelCapacity: 100,
		Behavior:     navigation.BehaviorTrade,
	})
	require.NoError(t, fakes.Ships.Save(ctx, cached))

	ships, err := service.SyncShips(ctx)

	require.NoError(t, err)
	require.Len(t, ships, 1)
	saved, err := fakes.Ships.FindBySymbol(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Equal(t, navigation.BehaviorTrade, saved.Behavior())
	assert.Equal(t, "X1-TEST-B2", saved.WaypointSymbol())
	assert.Equal(t, 80, saved.Fuel().Current)
}

func TestSyncAll_DefaultsToHeadquartersAndShipSystems(t *testing.T) {
	fakes, service := newService(t)
	fakes.API.AddShip(helpers.MustShip(t, helpers.ShipFixture{Symbol: "AGENT-1", Waypoint: "X1-TEST-A1", Fuel: 100}))
	fakes.API.SetContracts(&contract.Contract{ID: "contract-1", FactionSymbol: "COSMIC", Type: "PROCUREMENT"})

	report, err := service.SyncAll(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "AGENT", report.Agent)
	assert.Equal(t, []string{"X1-TEST"}, report.Systems)
	assert.Equal(t, 1, report.Ships)
	assert.Equal(t, 1, report.Contracts)
	assert.Equal(t, 2, report.Markets)
	assert.Contains(t, fakes.Agents.Agents, "AGENT")
	assert.Contains(t, fakes.Contracts.Contracts, "contract-1")
}

func TestSyncSystemHandler_RequiresSystem(t *testing.T) {
	_, service := newService(t)
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*catalog.SyncSystemCommand](m, catalog.NewSyncSystemHandler(service)))

	_, err := m.Send(context.Background(), &catalog.SyncSystemCommand{})
	assert.EqualError(t, err, "system symbol is required")

	response, err := m.Send(context.Background(), &catalog.SyncSystemCommand{SystemSymbol: "X1-TEST"})
	require.NoError(t, err)
	assert.Equal(t, 3, response.(*catalog.Report).Waypoints)
}
