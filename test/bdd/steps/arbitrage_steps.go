package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
)

type arbitrageContext struct {
	waypoints    []*shared.Waypoint
	goods        []*market.MarketTradeGood
	destinations []trading.ArbitrageDestination
	best         trading.BestExport
	hasBest      bool
}

func (ac *arbitrageContext) reset() {
	*ac = arbitrageContext{}
}

func (ac *arbitrageContext) graph() *trading.MarketGraph {
	return trading.NewMarketGraph(ac.goods, ac.waypoints)
}

// Given steps

func (ac *arbitrageContext) theFollowingWaypoints(table *godog.Table) error {
	rows, err := tableRows(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		x, err := strconv.Atoi(row["x"])
		if err != nil {
			return err
		}
		y, err := strconv.Atoi(row["y"])
		if err != nil {
			return err
		}
		wp, err := shared.NewWaypoint(row["symbol"], x, y)
		if err != nil {
			return err
		}
		ac.waypoints = append(ac.waypoints, wp)
	}
	return nil
}

func (ac *arbitrageContext) theFollowingMarketGoods(table *godog.Table) error {
	rows, err := tableRows(table)
	if err != nil {
		return err
	}
	for _, row := range rows {
		role, err := market.ParseRole(row["role"])
		if err != nil {
			return err
		}
		purchase, err := strconv.Atoi(row["purchase"])
		if err != nil {
			return err
		}
		sell, err := strconv.Atoi(row["sell"])
		if err != nil {
			return err
		}
		activity := "STRONG"
		if role == market.RoleExchange {
			activity = ""
		}
		good, err := market.NewMarketTradeGood(row["waypoint"], row["good"], role, "MODERATE", activity, purchase, sell, 20)
		if err != nil {
			return err
		}
		ac.goods = append(ac.goods, good)
	}
	return nil
}

// When steps

func (ac *arbitrageContext) iRankTheDestinationsOf(tradeSymbol, waypointSymbol string) error {
	for _, g := range ac.goods {
		if g.Symbol() == tradeSymbol && g.WaypointSymbol() == waypointSymbol && g.Role() == market.RoleExport {
			ac.destinations = ac.graph().Arbitrage(g)
			return nil
		}
	}
	return fmt.Errorf("no %s export at %s", tradeSymbol, waypointSymbol)
}

func (ac *arbitrageContext) iPickTheBestExportOf(waypointSymbol string) error {
	ac.best, ac.hasBest = ac.graph().BestExport(waypointSymbol)
	return nil
}

// Then steps

func (ac *arbitrageContext) theDestinationsShouldBe(table *godog.Table) error {
	rows, err := tableRows(table)
	if err != nil {
		return err
	}
	if len(rows) != len(ac.destinations) {
		return fmt.Errorf("expected %d destinations, got %d: %+v", len(rows), len(ac.destinations), ac.destinations)
	}
	for i, row := range rows {
		got := ac.destinations[i]
		want := fmt.Sprintf("%s/%s/%s/%s", row["waypoint"], row["distance"], row["spread"], row["ratio"])
		actual := fmt.Sprintf("%s/%d/%d/%.2f", got.WaypointSymbol, got.Distance, got.Spread, got.Ratio)
		if want != actual {
			return fmt.Errorf("destination %d: expected %s, got %s", i, want, actual)
		}
	}
	return nil
}

func (ac *arbitrageContext) thereShouldBeNoDestinations() error {
	if len(ac.destinations) != 0 {
		return fmt.Errorf("expected no destinations, got %+v", ac.destinations)
	}
	return nil
}

func (ac *arbitrageContext) theBestExportShouldBe(tradeSymbol, destination string, ratio float64) error {
	if !ac.hasBest {
		return fmt.Errorf("expected a best export, got none")
	}
	if ac.best.TradeSymbol != tradeSymbol || ac.best.Destination != destination || ac.best.Ratio != ratio {
		return fmt.Errorf("expected %s to %s at %.2f, got %+v", tradeSymbol, destination, ratio, ac.best)
	}
	return nil
}

func (ac *arbitrageContext) thereShouldBeNoBestExport() error {
	if ac.hasBest {
		return fmt.Errorf("expected no best export, got %+v", ac.best)
	}
	return nil
}

// tableRows maps every data row of a table to its header names
func tableRows(table *godog.Table) ([]map[string]string, error) {
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("table has no header row")
	}
	header := table.Rows[0].Cells
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, r := range table.Rows[1:] {
		if len(r.Cells) != len(header) {
			return nil, fmt.Errorf("row has %d cells, header has %d", len(r.Cells), len(header))
		}
		row := make(map[string]string, len(header))
		for i, cell := range r.Cells {
			row[header[i].Value] = cell.Value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func InitializeArbitrageScenario(ctx *godog.ScenarioContext) {
	ac := &arbitrageContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ac.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the following waypoints:$`, ac.theFollowingWaypoints)
	ctx.Step(`^the following market goods:$`, ac.theFollowingMarketGoods)

	// When steps
	ctx.Step(`^I rank the destinations of ([A-Z_]+) exported at ([A-Z0-9-]+)$`, ac.iRankTheDestinationsOf)
	ctx.Step(`^I pick the best export of ([A-Z0-9-]+)$`, ac.iPickTheBestExportOf)

	// Then steps
	ctx.Step(`^the destinations should be:$`, ac.theDestinationsShouldBe)
	ctx.Step(`^there should be no destinations$`, ac.thereShouldBeNoDestinations)
	ctx.Step(`^the best export should be ([A-Z_]+) to ([A-Z0-9-]+) with ratio ([\d.]+)$`, ac.theBestExportShouldBe)
	ctx.Step(`^there should be no best export$`, ac.thereShouldBeNoBestExport)
}
