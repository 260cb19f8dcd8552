package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cucumber/godog"

	"github.com/ropable/spacetraders-api/internal/adapters/persistence"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/test/helpers"
)

type marketCacheContext struct {
	repo     *persistence.MarketRepositoryGORM
	observed time.Time
}

func (mcc *marketCacheContext) reset() error {
	if err := helpers.TruncateAllTables(); err != nil {
		return err
	}
	mcc.repo = persistence.NewMarketRepository(helpers.SharedTestDB)
	mcc.observed = helpers.Epoch
	return nil
}

func goodFixtures(table *godog.Table) ([]helpers.GoodFixture, error) {
	rows, err := tableRows(table)
	if err != nil {
		return nil, err
	}
	goods := make([]helpers.GoodFixture, 0, len(rows))
	for _, row := range rows {
		role, err := market.ParseRole(row["role"])
		if err != nil {
			return nil, err
		}
		purchase, err := strconv.Atoi(row["purchase"])
		if err != nil {
			return nil, err
		}
		sell, err := strconv.Atoi(row["sell"])
		if err != nil {
			return nil, err
		}
		goods = append(goods, helpers.GoodFixture{
			Symbol:        row["good"],
			Role:          role,
			PurchasePrice: purchase,
			SellPrice:     sell,
			TradeVolume:   20,
		})
	}
	return goods, nil
}

// Given / When steps

func (mcc *marketCacheContext) theMarketIsObservedTrading(waypoint string, table *godog.Table) error {
	goods, err := goodFixtures(table)
	if err != nil {
		return err
	}
	mcc.observed = mcc.observed.Add(time.Minute)
	return mcc.repo.Save(context.Background(), helpers.BuildMarket(waypoint, mcc.observed, goods...))
}

// Then steps

func (mcc *marketCacheContext) theCacheShouldHoldPricedGoodsAt(count int, waypoint string) error {
	goods, err := mcc.repo.ListTradeGoods(context.Background(), market.TradeGoodFilter{WaypointSymbol: waypoint})
	if err != nil {
		return err
	}
	if len(goods) != count {
		return fmt.Errorf("expected %d priced goods at %s, got %d", count, waypoint, len(goods))
	}
	return nil
}

func (mcc *marketCacheContext) goodShouldSellFor(tradeSymbol, role, waypoint string, price int) error {
	found, err := mcc.repo.FindByWaypoint(context.Background(), waypoint)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("market %s is not cached", waypoint)
	}
	good := found.FindGood(tradeSymbol, market.Role(role))
	if good == nil {
		return fmt.Errorf("%s is not traded as %s at %s", tradeSymbol, role, waypoint)
	}
	if good.SellPrice() != price {
		return fmt.Errorf("expected sell price %d, got %d", price, good.SellPrice())
	}
	return nil
}

func (mcc *marketCacheContext) theCacheShouldListGoodsInSystem(count int, role, system string) error {
	goods, err := mcc.repo.ListTradeGoods(context.Background(), market.TradeGoodFilter{
		SystemSymbol: system,
		Role:         market.Role(role),
	})
	if err != nil {
		return err
	}
	if len(goods) != count {
		return fmt.Errorf("expected %d %s goods in %s, got %d", count, role, system, len(goods))
	}
	return nil
}

func InitializeMarketCacheScenario(ctx *godog.ScenarioContext) {
	mcc := &marketCacheContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, mcc.reset()
	})

	ctx.Step(`^the market "([^"]*)" (?:was|is) observed trading:$`, mcc.theMarketIsObservedTrading)
	ctx.Step(`^the cache should hold (\d+) priced goods at "([^"]*)"$`, mcc.theCacheShouldHoldPricedGoodsAt)
	ctx.Step(`^([A-Z_]+) as ([A-Z]+) at "([^"]*)" should sell for (\d+)$`, mcc.goodShouldSellFor)
	ctx.Step(`^the cache should list (\d+) ([A-Z]+) goods in system "([^"]*)"$`, mcc.theCacheShouldListGoodsInSystem)
}
