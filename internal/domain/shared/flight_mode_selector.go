package shared

// SelectAffordableMode returns the mode a ship should fly in to reach a
// destination distance away. The current mode is kept when the tank covers its
// fuel cost; otherwise the ship downgrades to DRIFT, whose cost is constant.
func SelectAffordableMode(fuel *Fuel, distance float64, current FlightMode) (FlightMode, error) {
	cost, err := FuelCost(distance, current)
	if err != nil {
		return current, err
	}
	if fuel == nil || fuel.Current < cost {
		return FlightModeDrift, nil
	}
	return current, nil
}
