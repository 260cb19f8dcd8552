package shared

import (
	"fmt"
	"math"
)

// FlightMode trades travel speed against fuel consumption
type FlightMode int

const (
	FlightModeCruise FlightMode = iota
	FlightModeDrift
	FlightModeBurn
	FlightModeStealth
)

// travelBaseSeconds is added to every computed travel duration
const travelBaseSeconds = 15.0

type flightModeConfig struct {
	Name           string
	TimeMultiplier float64
}

var flightModeConfigs = map[FlightMode]flightModeConfig{
	FlightModeCruise:  {"CRUISE", 25.0},
	FlightModeDrift:   {"DRIFT", 250.0},
	FlightModeBurn:    {"BURN", 12.5},
	FlightModeStealth: {"STEALTH", 30.0},
}

// Name returns the upstream mode name
func (f FlightMode) Name() string {
	if config, ok := flightModeConfigs[f]; ok {
		return config.Name
	}
	return "UNKNOWN"
}

func (f FlightMode) String() string {
	return f.Name()
}

// IsValid reports whether f is one of the four known modes
func (f FlightMode) IsValid() bool {
	_, ok := flightModeConfigs[f]
	return ok
}

// FuelCost returns the fuel needed to fly distance in mode.
//
//	CRUISE, STEALTH: floor(d)
//	BURN:            floor(d) * 2
//	DRIFT:           1
func FuelCost(distance float64, mode FlightMode) (int, error) {
	if distance < 0 || math.IsNaN(distance) {
		return 0, NewValidationError("distance", fmt.Sprintf("must be non-negative, got %v", distance))
	}

	switch mode {
	case FlightModeCruise, FlightModeStealth:
		return int(math.Floor(distance)), nil
	case FlightModeBurn:
		return int(math.Floor(distance)) * 2, nil
	case FlightModeDrift:
		return 1, nil
	default:
		return 0, NewInvalidFlightModeError(mode.Name())
	}
}

// TravelTime returns the whole-second duration of a flight.
//
// ok is false when distance <= 0: no travel is needed and the duration is not applicable.
func TravelTime(distance float64, engineSpeed int, mode FlightMode) (seconds int, ok bool, err error) {
	config, known := flightModeConfigs[mode]
	if !known {
		return 0, false, NewInvalidFlightModeError(mode.Name())
	}
	if engineSpeed <= 0 {
		return 0, false, NewValidationError("engineSpeed", fmt.Sprintf("must be positive, got %d", engineSpeed))
	}
	if distance <= 0 {
		return 0, false, nil
	}

	d := math.Max(1, distance)
	return int(math.Round(d*(config.TimeMultiplier/float64(engineSpeed)) + travelBaseSeconds)), true, nil
}

// IsValidFlightModeName checks if a mode name string is valid
func IsValidFlightModeName(modeName string) bool {
	_, err := ParseFlightMode(modeName)
	return err == nil
}

// ParseFlightMode parses an upstream mode name into a FlightMode
func ParseFlightMode(modeName string) (FlightMode, error) {
	for mode, config := range flightModeConfigs {
		if config.Name == modeName {
			return mode, nil
		}
	}
	return FlightModeCruise, NewInvalidFlightModeError(modeName)
}
