package navigation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

func newShip(t *testing.T, status navigation.NavStatus, fuel int) *navigation.Ship {
	t.Helper()
	f, err := shared.NewFuel(fuel, 100)
	require.NoError(t, err)

	state := navigation.ShipState{
		Symbol:         "AGENT-1",
		WaypointSymbol: "X1-GZ7-A1",
		NavStatus:      status,
		FlightMode:     shared.FlightModeCruise,
		Fuel:           f,
		Cargo:          shared.EmptyCargo(40),
		EngineSpeed:    30,
	}
	if status == navigation.NavStatusInTransit {
		state.Route = &navigation.Route{
			Origin:      "X1-GZ7-A1",
			Destination: "X1-GZ7-B2",
			Departure:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			Arrival:     time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC),
		}
	}

	ship, err := navigation.ReconstructShip(state)
	require.NoError(t, err)
	return ship
}

func TestReconstructShip_Validation(t *testing.T) {
	_, err := navigation.ReconstructShip(navigation.ShipState{})
	var dataErr *shared.InvalidShipDataError
	assert.ErrorAs(t, err, &dataErr)

	fuel, _ := shared.NewFuel(0, 0)
	_, err = navigation.ReconstructShip(navigation.ShipState{
		Symbol:    "AGENT-1",
		NavStatus: navigation.NavStatusInTransit,
		Fuel:      fuel,
		Cargo:     shared.EmptyCargo(0),
	})
	assert.ErrorAs(t, err, &dataErr, "in transit without a route")
}

func TestReconstructShip_DropsRouteWhenNotInTransit(t *testing.T) {
	fuel, _ := shared.NewFuel(10, 10)
	ship, err := navigation.ReconstructShip(navigation.ShipState{
		Symbol:         "AGENT-1",
		WaypointSymbol: "X1-GZ7-A1",
		NavStatus:      navigation.NavStatusDocked,
		Route:          &navigation.Route{Destination: "X1-GZ7-A1"},
		Fuel:           fuel,
		Cargo:          shared.EmptyCargo(10),
	})

	require.NoError(t, err)
	assert.Nil(t, ship.Route())
	assert.Equal(t, "X1-GZ7", ship.SystemSymbol())
	assert.Equal(t, navigation.BehaviorNone, ship.Behavior())
}

func TestShip_OrbitAndDockTransitions(t *testing.T) {
	docked := newShip(t, navigation.NavStatusDocked, 50)
	assert.True(t, docked.NeedsOrbit())
	needs, err := docked.NeedsDock()
	require.NoError(t, err)
	assert.False(t, needs)

	orbit := newShip(t, navigation.NavStatusInOrbit, 50)
	assert.False(t, orbit.NeedsOrbit())
	needs, err = orbit.NeedsDock()
	require.NoError(t, err)
	assert.True(t, needs)

	transit := newShip(t, navigation.NavStatusInTransit, 50)
	assert.False(t, transit.NeedsOrbit())
	_, err = transit.NeedsDock()
	var navErr *shared.InvalidNavStatusError
	assert.ErrorAs(t, err, &navErr)
}

func TestShip_CannotNavigateOrChangeModeInTransit(t *testing.T) {
	ship := newShip(t, navigation.NavStatusInTransit, 50)

	var navErr *shared.InvalidNavStatusError
	assert.ErrorAs(t, ship.EnsureNotInTransit("navigate"), &navErr)
	assert.ErrorAs(t, ship.SetFlightMode(shared.FlightModeBurn), &navErr)
	assert.Equal(t, shared.FlightModeCruise, ship.FlightMode())
}

func TestShip_ResolveArrival(t *testing.T) {
	ship := newShip(t, navigation.NavStatusInTransit, 50)

	assert.False(t, ship.ResolveArrival(time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC)))
	assert.Equal(t, 4*time.Minute, ship.TimeUntilArrival(time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC)))

	assert.True(t, ship.ResolveArrival(time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)))
	assert.True(t, ship.IsInOrbit())
	assert.Equal(t, "X1-GZ7-B2", ship.WaypointSymbol())
	assert.Nil(t, ship.Route())
}

func TestShip_Cooldown(t *testing.T) {
	ship := newShip(t, navigation.NavStatusInOrbit, 50)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(70 * time.Second)

	ship.ApplyCooldown(&expiry)

	assert.True(t, ship.InCooldown(now))
	assert.Equal(t, 70*time.Second, ship.CooldownRemaining(now))
	assert.False(t, ship.InCooldown(expiry))

	ship.ApplyCooldown(nil)
	assert.False(t, ship.InCooldown(now))
}

func TestShip_RefreshKeepsLocalBehavior(t *testing.T) {
	local := newShip(t, navigation.NavStatusDocked, 10)
	local.SetBehavior(navigation.BehaviorTrade)
	remote := newShip(t, navigation.NavStatusInOrbit, 80)

	local.Refresh(remote)

	assert.Equal(t, navigation.BehaviorTrade, local.Behavior())
	assert.True(t, local.IsInOrbit())
	assert.Equal(t, 80, local.Fuel().Current)
}

func TestPlanNavigation_DowngradesToDriftWhenFuelShort(t *testing.T) {
	ship := newShip(t, navigation.NavStatusInOrbit, 5)
	origin, _ := shared.NewWaypoint("X1-GZ7-A1", 0, 0)
	destination, _ := shared.NewWaypoint("X1-GZ7-B2", 8, 0)

	plan, err := navigation.PlanNavigation(ship, origin, destination)

	require.NoError(t, err)
	assert.Equal(t, shared.FlightModeDrift, plan.FlightMode)
	assert.True(t, plan.Downgraded)
	assert.Equal(t, 1, plan.FuelCost)
	assert.Equal(t, 82, plan.TravelSeconds) // 8*250/30+15 = 81.67
}

func TestPlanNavigation_SameWaypointNotApplicable(t *testing.T) {
	ship := newShip(t, navigation.NavStatusInOrbit, 50)
	origin, _ := shared.NewWaypoint("X1-GZ7-A1", 3, 3)

	plan, err := navigation.PlanNavigation(ship, origin, origin)

	require.NoError(t, err)
	assert.False(t, plan.Applicable)
	assert.Equal(t, shared.FlightModeCruise, plan.FlightMode)
}
