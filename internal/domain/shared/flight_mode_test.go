package shared_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

func TestFuelCost_FloorsDistanceForCruiseAndStealth(t *testing.T) {
	for _, d := range []float64{0, 0.4, 1, 7.99, 20, 123.5} {
		for _, mode := range []shared.FlightMode{shared.FlightModeCruise, shared.FlightModeStealth} {
			cost, err := shared.FuelCost(d, mode)
			require.NoError(t, err)
			assert.Equal(t, int(math.Floor(d)), cost, "mode %s distance %v", mode, d)
		}
	}
}

func TestFuelCost_BurnDoublesFlooredDistance(t *testing.T) {
	cost, err := shared.FuelCost(10.9, shared.FlightModeBurn)
	require.NoError(t, err)
	assert.Equal(t, 20, cost)
}

func TestFuelCost_DriftIsConstant(t *testing.T) {
	for _, d := range []float64{0, 1, 500, 9999.9} {
		cost, err := shared.FuelCost(d, shared.FlightModeDrift)
		require.NoError(t, err)
		assert.Equal(t, 1, cost)
	}
}

func TestFuelCost_RejectsInvalidInput(t *testing.T) {
	_, err := shared.FuelCost(-1, shared.FlightModeCruise)
	var validationErr *shared.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = shared.FuelCost(10, shared.FlightMode(42))
	var modeErr *shared.InvalidFlightModeError
	assert.ErrorAs(t, err, &modeErr)
}

func TestTravelTime_NotApplicableForZeroDistance(t *testing.T) {
	for _, mode := range []shared.FlightMode{shared.FlightModeCruise, shared.FlightModeDrift, shared.FlightModeBurn, shared.FlightModeStealth} {
		for _, speed := range []int{1, 10, 30} {
			_, ok, err := shared.TravelTime(0, speed, mode)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	}
}

func TestTravelTime_UsesModeMultiplier(t *testing.T) {
	cases := []struct {
		mode     shared.FlightMode
		distance float64
		speed    int
		expected int
	}{
		{shared.FlightModeCruise, 100, 30, 98},   // 100*25/30+15 = 98.33
		{shared.FlightModeDrift, 100, 30, 848},   // 100*250/30+15 = 848.33
		{shared.FlightModeBurn, 100, 30, 57},     // 100*12.5/30+15 = 56.67
		{shared.FlightModeStealth, 100, 30, 115}, // 100*30/30+15
		{shared.FlightModeCruise, 0.5, 10, 18},   // max(1, d) -> 1*2.5+15 = 17.5, rounds up
	}

	for _, tc := range cases {
		seconds, ok, err := shared.TravelTime(tc.distance, tc.speed, tc.mode)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, tc.expected, seconds, "mode %s", tc.mode)
	}
}

func TestTravelTime_RejectsNonPositiveSpeed(t *testing.T) {
	_, _, err := shared.TravelTime(10, 0, shared.FlightModeCruise)
	assert.Error(t, err)
}

func TestParseFlightMode(t *testing.T) {
	mode, err := shared.ParseFlightMode("BURN")
	require.NoError(t, err)
	assert.Equal(t, shared.FlightModeBurn, mode)
	assert.Equal(t, "BURN", mode.String())

	_, err = shared.ParseFlightMode("WARP")
	assert.EqualError(t, err, "invalid flight mode: WARP")
	assert.False(t, shared.IsValidFlightModeName("WARP"))
	assert.True(t, shared.IsValidFlightModeName("STEALTH"))
}

func TestSelectAffordableMode_DowngradesToDriftWhenShort(t *testing.T) {
	fuel, err := shared.NewFuel(5, 100)
	require.NoError(t, err)

	mode, err := shared.SelectAffordableMode(fuel, 8.4, shared.FlightModeCruise)
	require.NoError(t, err)
	assert.Equal(t, shared.FlightModeDrift, mode)

	cost, err := shared.FuelCost(8.4, mode)
	require.NoError(t, err)
	assert.Equal(t, 1, cost)
}

func TestSelectAffordableMode_KeepsModeWhenAffordable(t *testing.T) {
	fuel, err := shared.NewFuel(50, 100)
	require.NoError(t, err)

	mode, err := shared.SelectAffordableMode(fuel, 20, shared.FlightModeBurn)
	require.NoError(t, err)
	assert.Equal(t, shared.FlightModeBurn, mode)
}
