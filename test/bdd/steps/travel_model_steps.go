package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

type travelModelContext struct {
	fuel       *shared.Fuel
	fuelCost   int
	seconds    int
	applicable bool
	selected   shared.FlightMode
	parsed     shared.FlightMode
	err        error
}

func (tmc *travelModelContext) reset() {
	*tmc = travelModelContext{}
}

// Given steps

func (tmc *travelModelContext) aTankHoldingOfFuel(current, capacity int) error {
	fuel, err := shared.NewFuel(current, capacity)
	if err != nil {
		return err
	}
	tmc.fuel = fuel
	return nil
}

// When steps

func (tmc *travelModelContext) iComputeTheFuelCostOfFlying(distance float64, modeName string) error {
	mode, err := shared.ParseFlightMode(modeName)
	if err != nil {
		return err
	}
	tmc.fuelCost, tmc.err = shared.FuelCost(distance, mode)
	return nil
}

func (tmc *travelModelContext) iComputeTheTravelTimeOfFlying(distance float64, modeName string, engineSpeed int) error {
	mode, err := shared.ParseFlightMode(modeName)
	if err != nil {
		return err
	}
	tmc.seconds, tmc.applicable, tmc.err = shared.TravelTime(distance, engineSpeed, mode)
	return nil
}

func (tmc *travelModelContext) iSelectAFlightModeFor(distance float64, modeName string) error {
	current, err := shared.ParseFlightMode(modeName)
	if err != nil {
		return err
	}
	tmc.selected, tmc.err = shared.SelectAffordableMode(tmc.fuel, distance, current)
	return nil
}

func (tmc *travelModelContext) iParseTheFlightModeName(name string) error {
	tmc.parsed, tmc.err = shared.ParseFlightMode(name)
	return nil
}

// Then steps

func (tmc *travelModelContext) theFuelCostShouldBe(expected int) error {
	if tmc.err != nil {
		return fmt.Errorf("unexpected error: %v", tmc.err)
	}
	if tmc.fuelCost != expected {
		return fmt.Errorf("expected fuel cost %d, got %d", expected, tmc.fuelCost)
	}
	return nil
}

func (tmc *travelModelContext) theTravelTimeShouldBe(expected int) error {
	if tmc.err != nil {
		return fmt.Errorf("unexpected error: %v", tmc.err)
	}
	if !tmc.applicable {
		return fmt.Errorf("expected an applicable travel time, got none")
	}
	if tmc.seconds != expected {
		return fmt.Errorf("expected travel time %ds, got %ds", expected, tmc.seconds)
	}
	return nil
}

func (tmc *travelModelContext) theTravelTimeShouldNotBeApplicable() error {
	if tmc.err != nil {
		return fmt.Errorf("unexpected error: %v", tmc.err)
	}
	if tmc.applicable {
		return fmt.Errorf("expected no travel time, got %ds", tmc.seconds)
	}
	return nil
}

func (tmc *travelModelContext) theTravelComputationShouldFail() error {
	if tmc.err == nil {
		return fmt.Errorf("expected an error, got none")
	}
	return nil
}

func (tmc *travelModelContext) theSelectedFlightModeShouldBe(expected string) error {
	if tmc.err != nil {
		return fmt.Errorf("unexpected error: %v", tmc.err)
	}
	if tmc.selected.Name() != expected {
		return fmt.Errorf("expected flight mode %s, got %s", expected, tmc.selected.Name())
	}
	return nil
}

func (tmc *travelModelContext) theParsedModeNameShouldBe(expected string) error {
	if tmc.err != nil {
		return fmt.Errorf("unexpected error: %v", tmc.err)
	}
	if tmc.parsed.Name() != expected {
		return fmt.Errorf("expected %s, got %s", expected, tmc.parsed.Name())
	}
	return nil
}

func InitializeTravelModelScenario(ctx *godog.ScenarioContext) {
	tmc := &travelModelContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tmc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a tank holding (\d+) of (\d+) fuel$`, tmc.aTankHoldingOfFuel)

	// When steps
	ctx.Step(`^I compute the fuel cost of flying (-?[\d.]+) units in ([A-Z]+)$`, tmc.iComputeTheFuelCostOfFlying)
	ctx.Step(`^I compute the travel time of flying (-?[\d.]+) units in ([A-Z]+) with engine speed (\d+)$`, tmc.iComputeTheTravelTimeOfFlying)
	ctx.Step(`^I select a flight mode for ([\d.]+) units starting from ([A-Z]+)$`, tmc.iSelectAFlightModeFor)
	ctx.Step(`^I parse the flight mode name "([^"]*)"$`, tmc.iParseTheFlightModeName)

	// Then steps
	ctx.Step(`^the fuel cost should be (\d+)$`, tmc.theFuelCostShouldBe)
	ctx.Step(`^the travel time should be (\d+) seconds$`, tmc.theTravelTimeShouldBe)
	ctx.Step(`^the travel time should not be applicable$`, tmc.theTravelTimeShouldNotBeApplicable)
	ctx.Step(`^the travel computation should fail$`, tmc.theTravelComputationShouldFail)
	ctx.Step(`^the selected flight mode should be ([A-Z]+)$`, tmc.theSelectedFlightModeShouldBe)
	ctx.Step(`^the parsed mode name should be "([^"]*)"$`, tmc.theParsedModeNameShouldBe)
}
