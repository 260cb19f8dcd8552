package navigation

import (
	"fmt"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// NavigationPlan is the travel model's estimate for one flight
type NavigationPlan struct {
	Origin        string
	Destination   string
	Distance      float64
	FlightMode    shared.FlightMode
	FuelCost      int
	TravelSeconds int
	// Applicable is false when origin and destination coincide
	Applicable bool
	// Downgraded is true when the ship could not afford its current mode
	Downgraded bool
}

// PlanNavigation picks the flight mode for a trip from origin to destination and
// estimates its fuel cost and duration. The ship's current mode is kept unless
// the tank cannot cover it, in which case the plan falls back to DRIFT.
func PlanNavigation(ship *Ship, origin, destination *shared.Waypoint) (*NavigationPlan, error) {
	if origin == nil || destination == nil {
		return nil, fmt.Errorf("origin and destination are required")
	}
	distance := origin.DistanceTo(destination)

	mode, err := shared.SelectAffordableMode(ship.Fuel(), distance, ship.FlightMode())
	if err != nil {
		return nil, err
	}
	cost, err := shared.FuelCost(distance, mode)
	if err != nil {
		return nil, err
	}

	plan := &NavigationPlan{
		Origin:      origin.Symbol,
		Destination: destination.Symbol,
		Distance:    distance,
		FlightMode:  mode,
		FuelCost:    cost,
		Downgraded:  mode != ship.FlightMode(),
	}

	if ship.EngineSpeed() > 0 {
		seconds, ok, err := shared.TravelTime(distance, ship.EngineSpeed(), mode)
		if err != nil {
			return nil, err
		}
		plan.TravelSeconds = seconds
		plan.Applicable = ok
	} else {
		plan.Applicable = distance > 0
	}

	return plan, nil
}
