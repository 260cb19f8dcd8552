package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/ropable/spacetraders-api/internal/application/ship/commands"
	"github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/test/helpers"
)

type shipActionContext struct {
	fakes   *helpers.Fakes
	support *commands.ActionSupport
	ship    *navigation.Ship
	result  *types.ActionResult
	err     error
}

func (sac *shipActionContext) reset() {
	sac.fakes = helpers.NewFakes()
	f := sac.fakes
	sac.support = commands.NewActionSupport(f.API, f.Ships, f.Markets, f.Transactions, f.Waypoints, f.Agents, f.Clock)
	sac.ship = nil
	sac.result = nil
	sac.err = nil
}

// register adds the ship to both the fake server and the local cache
func (sac *shipActionContext) register(fixture helpers.ShipFixture) error {
	ship, err := helpers.BuildShip(fixture)
	if err != nil {
		return err
	}
	sac.fakes.API.AddShip(ship)
	if err := sac.fakes.Ships.Save(context.Background(), ship); err != nil {
		return err
	}
	sac.ship = ship
	return nil
}

// Given steps

func (sac *shipActionContext) aMarketplaceAt(symbol string, x, y int) error {
	wp := helpers.Waypoint(symbol, x, y, shared.TraitMarketplace)
	sac.fakes.API.AddWaypoint(wp)
	return sac.fakes.Waypoints.Save(context.Background(), wp)
}

func (sac *shipActionContext) aShipAtWithFuel(status, symbol, waypoint string, fuel, capacity int) error {
	navStatus, err := navigation.ParseNavStatus(status)
	if err != nil {
		return err
	}
	return sac.register(helpers.ShipFixture{
		Symbol:        symbol,
		Waypoint:      waypoint,
		Status:        navStatus,
		Fuel:          fuel,
		FuelCapacity:  capacity,
		CargoCapacity: 40,
	})
}

func (sac *shipActionContext) aShipInTransitTo(symbol, destination string, seconds int) error {
	now := sac.fakes.Clock.Now()
	return sac.register(helpers.ShipFixture{
		Symbol:        symbol,
		Waypoint:      destination,
		Status:        navigation.NavStatusInTransit,
		Fuel:          100,
		FuelCapacity:  400,
		CargoCapacity: 40,
		Route: &navigation.Route{
			Origin:      destination,
			Destination: destination,
			Departure:   now.Add(-time.Minute),
			Arrival:     now.Add(time.Duration(seconds) * time.Second),
		},
	})
}

func (sac *shipActionContext) theShipIsCoolingDownFor(seconds int) error {
	expiration := sac.fakes.Clock.Now().Add(time.Duration(seconds) * time.Second)
	sac.ship.ApplyCooldown(&expiration)
	return nil
}

// When steps

func (sac *shipActionContext) iOrbitTheShip() error {
	sac.result, sac.err = sac.support.Orbit(context.Background(), sac.ship)
	return nil
}

func (sac *shipActionContext) iDockTheShip() error {
	sac.result, sac.err = sac.support.Dock(context.Background(), sac.ship)
	return nil
}

func (sac *shipActionContext) iNavigateTheShipTo(destination string) error {
	sac.result, sac.err = sac.support.Navigate(context.Background(), sac.ship, destination)
	return nil
}

func (sac *shipActionContext) iExtractResourcesWithTheShip() error {
	sac.result, sac.err = sac.support.Extract(context.Background(), sac.ship)
	return nil
}

// Then steps

func (sac *shipActionContext) theActionOutcomeShouldBe(expected string) error {
	if sac.err != nil {
		return fmt.Errorf("action failed: %v", sac.err)
	}
	if sac.result == nil {
		return fmt.Errorf("no action result")
	}
	if string(sac.result.Outcome) != expected {
		return fmt.Errorf("expected outcome %s, got %s (%s)", expected, sac.result.Outcome, sac.result.Reason)
	}
	return nil
}

func (sac *shipActionContext) theShipShouldBe(expected string) error {
	if string(sac.ship.NavStatus()) != expected {
		return fmt.Errorf("expected ship %s, got %s", expected, sac.ship.NavStatus())
	}
	return nil
}

func (sac *shipActionContext) theShipShouldFlyWithFuelLeft(mode string, fuel int) error {
	if sac.ship.FlightMode().Name() != mode {
		return fmt.Errorf("expected flight mode %s, got %s", mode, sac.ship.FlightMode().Name())
	}
	if sac.ship.Fuel().Current != fuel {
		return fmt.Errorf("expected %d fuel left, got %d", fuel, sac.ship.Fuel().Current)
	}
	return nil
}

func (sac *shipActionContext) theShipShouldArriveIn(seconds int) error {
	if sac.result.Arrival == nil {
		return fmt.Errorf("expected an arrival time, got none")
	}
	expected := sac.fakes.Clock.Now().Add(time.Duration(seconds) * time.Second)
	if !sac.result.Arrival.Equal(expected) {
		return fmt.Errorf("expected arrival at %s, got %s", expected, sac.result.Arrival)
	}
	return nil
}

func (sac *shipActionContext) theRemainingCooldownShouldBe(seconds int) error {
	expected := time.Duration(seconds) * time.Second
	if sac.result.CooldownRemaining != expected {
		return fmt.Errorf("expected %s cooldown, got %s", expected, sac.result.CooldownRemaining)
	}
	return nil
}

func (sac *shipActionContext) theServerShouldHaveReceived(calls string) error {
	expected := strings.Split(calls, ", ")
	actual := sac.fakes.API.Calls()
	if strings.Join(actual, ", ") != strings.Join(expected, ", ") {
		return fmt.Errorf("expected calls [%s], got [%s]", calls, strings.Join(actual, ", "))
	}
	return nil
}

func (sac *shipActionContext) theServerShouldHaveReceivedNothing() error {
	if calls := sac.fakes.API.Calls(); len(calls) != 0 {
		return fmt.Errorf("expected no calls, got %v", calls)
	}
	return nil
}

func InitializeShipActionScenario(ctx *godog.ScenarioContext) {
	sac := &shipActionContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		sac.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a marketplace "([^"]*)" at (-?\d+),(-?\d+)$`, sac.aMarketplaceAt)
	ctx.Step(`^a (DOCKED|IN_ORBIT) ship "([^"]*)" at "([^"]*)" with (\d+) of (\d+) fuel$`, sac.aShipAtWithFuel)
	ctx.Step(`^a ship "([^"]*)" in transit to "([^"]*)" arriving in (\d+) seconds$`, sac.aShipInTransitTo)
	ctx.Step(`^the ship is cooling down for (\d+) seconds$`, sac.theShipIsCoolingDownFor)

	// When steps
	ctx.Step(`^I orbit the ship$`, sac.iOrbitTheShip)
	ctx.Step(`^I dock the ship$`, sac.iDockTheShip)
	ctx.Step(`^I navigate the ship to "([^"]*)"$`, sac.iNavigateTheShipTo)
	ctx.Step(`^I extract resources with the ship$`, sac.iExtractResourcesWithTheShip)

	// Then steps
	ctx.Step(`^the action outcome should be ([A-Z_]+)$`, sac.theActionOutcomeShouldBe)
	ctx.Step(`^the ship should be ([A-Z_]+)$`, sac.theShipShouldBe)
	ctx.Step(`^the ship should fly ([A-Z]+) with (\d+) fuel left$`, sac.theShipShouldFlyWithFuelLeft)
	ctx.Step(`^the ship should arrive in (\d+) seconds$`, sac.theShipShouldArriveIn)
	ctx.Step(`^the remaining cooldown should be (\d+) seconds$`, sac.theRemainingCooldownShouldBe)
	ctx.Step(`^the server should have received "([^"]*)"$`, sac.theServerShouldHaveReceived)
	ctx.Step(`^the server should have received nothing$`, sac.theServerShouldHaveReceivedNothing)
}
