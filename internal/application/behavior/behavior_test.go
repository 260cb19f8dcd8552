package behavior_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appBehavior "github.com/ropable/spacetraders-api/internal/application/behavior"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/ship/commands"
	"github.com/ropable/spacetraders-api/internal/application/trading/services"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/test/helpers"
)

const (
	exporter  = "X1-TEST-A1"
	farImport = "X1-TEST-B2"
	midImport = "X1-TEST-C3"
	copperHub = "X1-TEST-D4"
	asteroid  = "X1-TEST-E5"
)

// fixedRandom always picks the same index and remembers the range it was asked for
type fixedRandom struct {
	index int
	asked []int
}

func (r *fixedRandom) Intn(n int) int {
	r.asked = append(r.asked, n)
	return r.index
}

type world struct {
	*helpers.Fakes
	driver *appBehavior.Driver
	random *fixedRandom
}

// newWorld lays out one system on the x axis:
//
//	A1 (0,0)   exports IRON_ORE (buy 12, sell 10)
//	C3 (5,0)   imports IRON_ORE (buy 35)
//	B2 (10,0)  imports IRON_ORE (buy 50, sell 45)
//	D4 (30,0)  exports COPPER, which nobody imports
//	E5 (0,30)  asteroid without a market
func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()
	fakes := helpers.NewFakes()

	waypoints := []*shared.Waypoint{
		helpers.Waypoint(exporter, 0, 0, shared.TraitMarketplace),
		helpers.Waypoint(farImport, 10, 0, shared.TraitMarketplace),
		helpers.Waypoint(midImport, 5, 0, shared.TraitMarketplace),
		helpers.Waypoint(copperHub, 30, 0, shared.TraitMarketplace),
		helpers.Waypoint(asteroid, 0, 30),
	}
	fakes.API.AddWaypoint(waypoints...)
	for _, wp := range waypoints {
		require.NoError(t, fakes.Waypoints.Save(ctx, wp))
	}

	for _, m := range []*market.Market{
		helpers.BuildMarket(exporter, helpers.Epoch,
			helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleExport, PurchasePrice: 12, SellPrice: 10, TradeVolume: 20}),
		helpers.BuildMarket(farImport, helpers.Epoch,
			helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleImport, PurchasePrice: 50, SellPrice: 45, TradeVolume: 20}),
		helpers.BuildMarket(midImport, helpers.Epoch,
			helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleImport, PurchasePrice: 35, SellPrice: 8, TradeVolume: 20}),
		helpers.BuildMarket(copperHub, helpers.Epoch,
			helpers.GoodFixture{Symbol: "COPPER", Role: market.RoleExport, PurchasePrice: 20, SellPrice: 15, TradeVolume: 10}),
	} {
		fakes.API.SetMarket(m)
		require.NoError(t, fakes.Markets.Save(ctx, m))
	}

	random := &fixedRandom{}
	return &world{Fakes: fakes, driver: newDriver(fakes, fakes.Scheduler, random), random: random}
}

func newDriver(fakes *helpers.Fakes, scheduler behavior.Scheduler, random appBehavior.RandomSource) *appBehavior.Driver {
	support := commands.NewActionSupport(fakes.API, fakes.Ships, fakes.Markets, fakes.Transactions, fakes.Waypoints, fakes.Agents, fakes.Clock)
	return appBehavior.NewDriver(
		support,
		services.NewMarketGraphLoader(fakes.Markets, fakes.Waypoints),
		fakes.Ships,
		fakes.Continuations,
		scheduler,
		random,
		appBehavior.Options{},
	)
}

func (w *world) ship(t *testing.T, f helpers.ShipFixture) *navigation.Ship {
	t.Helper()
	if f.Symbol == "" {
		f.Symbol = "AGENT-1"
	}
	if f.Fuel == 0 {
		f.Fuel = 100
	}
	if f.CargoCapacity == 0 {
		f.CargoCapacity = 40
	}
	ship := helpers.MustShip(t, f)
	w.API.AddShip(ship)
	require.NoError(t, w.Ships.Save(context.Background(), ship))
	return ship
}

func TestTradeCycle_BuysBestExportAndFliesToIt(t *testing.T) {
	// Arrange
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: exporter})

	// Act
	result, err := w.driver.TradeCycle(context.Background(), "AGENT-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Equal(t, []string{
		helpers.CallGetShip,
		helpers.CallGetMarket,
		helpers.CallPurchase,
		helpers.CallOrbit,
		helpers.CallNavigate,
	}, w.API.Calls())

	// C3 wins on ratio (35-10)/5 against B2's (50-10)/10
	server := w.API.ServerShip("AGENT-1")
	assert.Equal(t, 20, server.Cargo().GetItemUnits("IRON_ORE"))
	require.NotNil(t, server.Route())
	assert.Equal(t, midImport, server.Route().Destination)

	// round(5 * 25 / 30 + 15) = 19s of flight, plus the arrival buffer
	last := w.Scheduler.Last()
	require.NotNil(t, last)
	assert.False(t, last.Immediate)
	assert.Equal(t, behavior.ActionTradeCycle, last.Continuation.Action)
	assert.Equal(t, helpers.Epoch.Add(20*time.Second), last.Continuation.DueAt)
}

func TestTradeCycle_SellsCargoAndContinuesImmediately(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: farImport, Cargo: map[string]int{"IRON_ORE": 20}})

	result, err := w.driver.TradeCycle(context.Background(), "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Equal(t, 1, w.API.CallCount(helpers.CallSell))
	assert.Zero(t, w.API.CallCount(helpers.CallNavigate))
	assert.Equal(t, 100000+20*45, w.API.Credits())

	require.Equal(t, 1, w.Scheduler.Count())
	assert.True(t, w.Scheduler.Last().Immediate)
}

func TestTradeCycle_WandersToNearbyExportMarketWithoutTrade(t *testing.T) {
	w := newWorld(t)
	w.random.index = 1
	w.ship(t, helpers.ShipFixture{Waypoint: farImport})

	result, err := w.driver.TradeCycle(context.Background(), "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Zero(t, w.API.CallCount(helpers.CallPurchase))

	// From B2 the exporters are A1 at 10 and D4 at 20
	assert.Equal(t, []int{2}, w.random.asked)
	server := w.API.ServerShip("AGENT-1")
	require.NotNil(t, server.Route())
	assert.Equal(t, copperHub, server.Route().Destination)

	// round(20 * 25 / 30 + 15) = 32s, plus the buffer
	assert.Equal(t, helpers.Epoch.Add(33*time.Second), w.Scheduler.Last().Continuation.DueAt)
}

func TestTradeCycle_WandersToExporterKnownOnlyFromCatalog(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	// A fresh system: A1 lists IRON_ORE among its exports but nobody has seen its prices
	w.Markets.Markets = map[string]*market.Market{}
	w.Markets.TradeGoods = map[string]*market.MarketTradeGood{}
	iron, err := market.NewCatalogEntry("IRON_ORE", "", "")
	require.NoError(t, err)
	unpriced, err := market.NewMarket(exporter, []market.TradeGood{iron}, nil, nil, nil, nil, helpers.Epoch)
	require.NoError(t, err)
	require.NoError(t, w.Markets.Save(ctx, unpriced))
	importer := helpers.BuildMarket(farImport, helpers.Epoch,
		helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleImport, PurchasePrice: 50, SellPrice: 45, TradeVolume: 20})
	w.API.SetMarket(importer)
	require.NoError(t, w.Markets.Save(ctx, importer))
	w.ship(t, helpers.ShipFixture{Waypoint: farImport})

	result, err := w.driver.TradeCycle(ctx, "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Zero(t, w.API.CallCount(helpers.CallPurchase))
	assert.Equal(t, []int{1}, w.random.asked)
	server := w.API.ServerShip("AGENT-1")
	require.NotNil(t, server.Route())
	assert.Equal(t, exporter, server.Route().Destination)
}

func TestTradeCycle_WandersWhenNothingCanBeBought(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	drained := helpers.BuildMarket(exporter, helpers.Epoch,
		helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleExport, PurchasePrice: 12, SellPrice: 10, TradeVolume: 0})
	w.API.SetMarket(drained)
	require.NoError(t, w.Markets.Save(ctx, drained))
	w.ship(t, helpers.ShipFixture{Waypoint: exporter})

	result, err := w.driver.TradeCycle(ctx, "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Zero(t, w.API.CallCount(helpers.CallPurchase))

	// The only other exporter seen from A1 is D4
	assert.Equal(t, []int{1}, w.random.asked)
	server := w.API.ServerShip("AGENT-1")
	assert.True(t, server.Cargo().IsEmpty())
	require.NotNil(t, server.Route())
	assert.Equal(t, copperHub, server.Route().Destination)
}

func TestTradeCycle_ShipsWanderConcurrently(t *testing.T) {
	w := newWorld(t)
	driver := newDriver(w.Fakes, w.Scheduler, appBehavior.NewLockedRandom(7))
	ships := []string{"AGENT-1", "AGENT-2", "AGENT-3", "AGENT-4"}
	for _, symbol := range ships {
		w.ship(t, helpers.ShipFixture{Symbol: symbol, Waypoint: farImport})
	}

	results := make([]*appBehavior.CycleResult, len(ships))
	errs := make([]error, len(ships))
	var wg sync.WaitGroup
	for i, symbol := range ships {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			results[i], errs[i] = driver.TradeCycle(context.Background(), symbol)
		}(i, symbol)
	}
	wg.Wait()

	for i, symbol := range ships {
		require.NoError(t, errs[i], symbol)
		assert.Equal(t, appBehavior.CycleScheduled, results[i].Outcome, symbol)
		route := w.API.ServerShip(symbol).Route()
		require.NotNil(t, route, symbol)
		assert.Contains(t, []string{exporter, copperHub}, route.Destination)
	}
	assert.Equal(t, len(ships), w.Scheduler.Count())
}

func TestLockedRandom_ConcurrentDrawsStayInRange(t *testing.T) {
	random := appBehavior.NewLockedRandom(1)
	var wg sync.WaitGroup
	draws := make([]int, 64)
	for i := range draws {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			draws[i] = random.Intn(3)
		}(i)
	}
	wg.Wait()

	for _, n := range draws {
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3)
	}
}

func TestTradeCycle_AbortsWhenRefuelFails(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: exporter, Fuel: 50, FuelCapacity: 100})
	w.API.FailNext(helpers.CallRefuel, &domainPorts.RemoteFailure{Code: helpers.CodeInsufficientFunds, Message: "Agent has insufficient funds"})

	result, err := w.driver.TradeCycle(context.Background(), "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleAborted, result.Outcome)
	require.NotNil(t, result.Last)
	assert.Equal(t, helpers.CodeInsufficientFunds, result.Last.Failure.Code)
	assert.Zero(t, w.API.CallCount(helpers.CallPurchase))
	assert.Zero(t, w.Scheduler.Count())
}

func TestTradeCycle_InTransitWaitsForArrival(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{
		Waypoint: farImport,
		Status:   navigation.NavStatusInTransit,
		Route: &navigation.Route{
			Origin:      exporter,
			Destination: farImport,
			Departure:   helpers.Epoch.Add(-time.Minute),
			Arrival:     helpers.Epoch.Add(time.Minute),
		},
	})

	result, err := w.driver.TradeCycle(context.Background(), "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Equal(t, []string{helpers.CallGetShip}, w.API.Calls())
	assert.Equal(t, helpers.Epoch.Add(61*time.Second), w.Scheduler.Last().Continuation.DueAt)
}

func TestTradeCycle_AbortsWhenNoExportMarketIsKnown(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	// Only importers remain cached
	w.Markets.Markets = map[string]*market.Market{}
	w.Markets.TradeGoods = map[string]*market.MarketTradeGood{}
	lonely := helpers.BuildMarket(farImport, helpers.Epoch,
		helpers.GoodFixture{Symbol: "IRON_ORE", Role: market.RoleImport, PurchasePrice: 50, SellPrice: 45, TradeVolume: 20})
	require.NoError(t, w.Markets.Save(ctx, lonely))
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid})

	result, err := w.driver.TradeCycle(ctx, "AGENT-1")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleAborted, result.Outcome)
	assert.Contains(t, result.Reason, "no export markets")
	assert.Zero(t, w.Scheduler.Count())
}

func TestExtractUntilFull_SchedulesAtCooldownExpiry(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid, CargoCapacity: 10})
	w.API.SetYield("AGENT-1", "IRON_ORE", 4)

	result, err := w.driver.ExtractUntilFull(context.Background(), "AGENT-1", "IRON_ORE")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Equal(t, []string{helpers.CallOrbit, helpers.CallExtract}, w.API.Calls())

	last := w.Scheduler.Last()
	require.NotNil(t, last)
	assert.False(t, last.Immediate)
	assert.Equal(t, helpers.Epoch.Add(70*time.Second), last.Continuation.DueAt)
	assert.Equal(t, "IRON_ORE", last.Continuation.Param(behavior.ParamTargetResource))
}

func TestExtractUntilFull_JettisonsEverythingButTheTarget(t *testing.T) {
	w := newWorld(t)
	ship := w.ship(t, helpers.ShipFixture{Waypoint: asteroid, CargoCapacity: 10, Cargo: map[string]int{"ICE_WATER": 3}})
	w.API.SetYield("AGENT-1", "IRON_ORE", 5)

	_, err := w.driver.ExtractUntilFull(context.Background(), ship.Symbol(), "IRON_ORE")

	require.NoError(t, err)
	assert.Equal(t, 1, w.API.CallCount(helpers.CallJettison))
	server := w.API.ServerShip(ship.Symbol())
	assert.Equal(t, 5, server.Cargo().GetItemUnits("IRON_ORE"))
	assert.Zero(t, server.Cargo().GetItemUnits("ICE_WATER"))
}

func TestExtractUntilFull_CompletesOnFullHold(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid, CargoCapacity: 10})
	w.API.SetYield("AGENT-1", "IRON_ORE", 10)

	result, err := w.driver.ExtractUntilFull(context.Background(), "AGENT-1", "")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleCompleted, result.Outcome)
	assert.Zero(t, w.Scheduler.Count())
}

func TestExtractUntilFull_InCooldownOnlyReschedules(t *testing.T) {
	w := newWorld(t)
	cooldown := helpers.Epoch.Add(30 * time.Second)
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid, Status: navigation.NavStatusInOrbit, CargoCapacity: 10, Cooldown: &cooldown})

	result, err := w.driver.ExtractUntilFull(context.Background(), "AGENT-1", "")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleScheduled, result.Outcome)
	assert.Empty(t, w.API.Calls())
	assert.Equal(t, cooldown, w.Scheduler.Last().Continuation.DueAt)
}

func TestExtractUntilFull_AbortsOnRejection(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid, Status: navigation.NavStatusInOrbit, CargoCapacity: 10})
	w.API.FailNext(helpers.CallExtract, &domainPorts.RemoteFailure{Code: 4205, Message: "Ship has no mining laser"})

	result, err := w.driver.ExtractUntilFull(context.Background(), "AGENT-1", "")

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleAborted, result.Outcome)
	assert.Zero(t, w.Scheduler.Count())
}

func TestStart_AnnotatesShipAndSchedulesFirstStep(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid})
	stale, err := behavior.NewContinuation("AGENT-1", behavior.ActionTradeCycle, nil, helpers.Epoch.Add(time.Hour), helpers.Epoch)
	require.NoError(t, err)
	require.NoError(t, w.Continuations.Save(ctx, stale))

	response, err := w.driver.Start(ctx, "AGENT-1", navigation.BehaviorMine, "COPPER_ORE")

	require.NoError(t, err)
	assert.Equal(t, behavior.ActionExtractUntilFull, response.Continuation.Action)
	assert.Equal(t, "COPPER_ORE", response.Continuation.Param(behavior.ParamTargetResource))
	assert.True(t, w.Scheduler.Last().Immediate)

	saved, err := w.Ships.FindBySymbol(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Equal(t, navigation.BehaviorMine, saved.Behavior())

	pending, err := w.Continuations.ListPendingByShip(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// lockingScheduler notes whether each scheduling call happened under the ship lock
type lockingScheduler struct {
	*helpers.MockScheduler
	mu        sync.Mutex
	held      map[string]bool
	underLock []bool
}

func (s *lockingScheduler) WithShipLock(shipSymbol string, fn func() error) error {
	s.mu.Lock()
	s.held[shipSymbol] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.held, shipSymbol)
		s.mu.Unlock()
	}()
	return fn()
}

func (s *lockingScheduler) ScheduleNow(ctx context.Context, c *behavior.Continuation) error {
	s.mu.Lock()
	s.underLock = append(s.underLock, s.held[c.ShipSymbol])
	s.mu.Unlock()
	return s.MockScheduler.ScheduleNow(ctx, c)
}

func TestStart_ReschedulesUnderShipLock(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid})
	scheduler := &lockingScheduler{MockScheduler: helpers.NewMockScheduler(), held: map[string]bool{}}
	driver := newDriver(w.Fakes, scheduler, w.random)

	_, err := driver.Start(ctx, "AGENT-1", navigation.BehaviorTrade, "")
	require.NoError(t, err)
	_, err = driver.Stop(ctx, "AGENT-1")
	require.NoError(t, err)

	assert.Equal(t, []bool{true}, scheduler.underLock)
	assert.Empty(t, scheduler.held)
}

func TestStart_RejectsBehaviorWithoutDriver(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid})

	_, err := w.driver.Start(context.Background(), "AGENT-1", navigation.BehaviorHaul, "")

	assert.EqualError(t, err, "behavior HAUL has no driver")
	assert.Zero(t, w.Scheduler.Count())
}

func TestStop_CancelsPendingContinuationsAndClearsBehavior(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid, Behavior: navigation.BehaviorTrade})
	for _, ship := range []string{"AGENT-1", "AGENT-1", "AGENT-2"} {
		c, err := behavior.NewContinuation(ship, behavior.ActionTradeCycle, nil, helpers.Epoch.Add(time.Minute), helpers.Epoch)
		require.NoError(t, err)
		require.NoError(t, w.Continuations.Save(ctx, c))
	}

	response, err := w.driver.Stop(ctx, "AGENT-1")

	require.NoError(t, err)
	assert.Len(t, response.Cancelled, 2)
	saved, err := w.Ships.FindBySymbol(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Equal(t, navigation.BehaviorNone, saved.Behavior())

	others, err := w.Continuations.ListPendingByShip(ctx, "AGENT-2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestResume_SkipsShipWithoutBehavior(t *testing.T) {
	w := newWorld(t)
	w.ship(t, helpers.ShipFixture{Waypoint: asteroid, Behavior: navigation.BehaviorNone})
	c, err := behavior.NewContinuation("AGENT-1", behavior.ActionTradeCycle, nil, helpers.Epoch, helpers.Epoch)
	require.NoError(t, err)

	result, err := w.driver.Resume(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, appBehavior.CycleSkipped, result.Outcome)
	assert.Empty(t, w.API.Calls())
}

func TestResume_ThroughMediatorRunsNamedStep(t *testing.T) {
	w := newWorld(t)
	cooldown := helpers.Epoch.Add(45 * time.Second)
	w.ship(t, helpers.ShipFixture{
		Waypoint:      asteroid,
		Status:        navigation.NavStatusInOrbit,
		CargoCapacity: 10,
		Cooldown:      &cooldown,
		Behavior:      navigation.BehaviorMine,
	})
	c, err := behavior.NewContinuation("AGENT-1", behavior.ActionExtractUntilFull,
		map[string]string{behavior.ParamTargetResource: "IRON_ORE"}, helpers.Epoch, helpers.Epoch)
	require.NoError(t, err)

	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*appBehavior.ResumeContinuationCommand](m, appBehavior.NewResumeContinuationHandler(w.driver)))

	response, err := m.Send(context.Background(), &appBehavior.ResumeContinuationCommand{Continuation: c})

	require.NoError(t, err)
	result := response.(*appBehavior.CycleResult)
	assert.Equal(t, behavior.ActionExtractUntilFull, result.Action)
	assert.Equal(t, cooldown, w.Scheduler.Last().Continuation.DueAt)
	assert.Equal(t, "IRON_ORE", w.Scheduler.Last().Continuation.Param(behavior.ParamTargetResource))
}
