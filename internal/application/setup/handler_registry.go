package setup

import (
	"reflect"

	appBehavior "github.com/ropable/spacetraders-api/internal/application/behavior"
	"github.com/ropable/spacetraders-api/internal/application/catalog"
	contractQuery "github.com/ropable/spacetraders-api/internal/application/contract/queries"
	ledgerQuery "github.com/ropable/spacetraders-api/internal/application/ledger/queries"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	playerQuery "github.com/ropable/spacetraders-api/internal/application/player/queries"
	shipCmd "github.com/ropable/spacetraders-api/internal/application/ship/commands"
	shipQuery "github.com/ropable/spacetraders-api/internal/application/ship/queries"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	shipyardQuery "github.com/ropable/spacetraders-api/internal/application/shipyard/queries"
	tradingQuery "github.com/ropable/spacetraders-api/internal/application/trading/queries"
	"github.com/ropable/spacetraders-api/internal/application/trading/services"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
)

// Repositories groups the persistence ports the handlers need
type Repositories struct {
	Ships         navigation.ShipRepository
	Markets       market.MarketRepository
	Transactions  market.TransactionRepository
	Waypoints     system.WaypointRepository
	Agents        player.AgentRepository
	Contracts     contract.ContractRepository
	Shipyards     shipyard.ShipyardRepository
	Continuations behavior.ContinuationRepository
}

// Options tunes the handlers built by the registry
type Options struct {
	Behavior        appBehavior.Options
	Routes          trading.RouteOptions
	SyncConcurrency int
}

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	apiClient domainPorts.APIClient
	repos     Repositories
	clock     shared.Clock
	scheduler behavior.Scheduler
	random    appBehavior.RandomSource
	opts      Options

	support *shipCmd.ActionSupport
	graphs  *services.MarketGraphLoader
	driver  *appBehavior.Driver
	sync    *catalog.Service
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	apiClient domainPorts.APIClient,
	repos Repositories,
	clock shared.Clock,
	scheduler behavior.Scheduler,
	random appBehavior.RandomSource,
	opts Options,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	r := &HandlerRegistry{
		apiClient: apiClient,
		repos:     repos,
		clock:     clock,
		scheduler: scheduler,
		random:    random,
		opts:      opts,
	}
	r.support = shipCmd.NewActionSupport(apiClient, repos.Ships, repos.Markets, repos.Transactions, repos.Waypoints, repos.Agents, clock)
	r.graphs = services.NewMarketGraphLoader(repos.Markets, repos.Waypoints)
	r.driver = appBehavior.NewDriver(r.support, r.graphs, repos.Ships, repos.Continuations, scheduler, random, opts.Behavior)
	r.sync = catalog.NewService(apiClient, repos.Agents, repos.Waypoints, repos.Markets, repos.Shipyards, repos.Contracts, repos.Ships, opts.SyncConcurrency)
	return r
}

// GraphLoader exposes the shared market graph loader
func (r *HandlerRegistry) GraphLoader() *services.MarketGraphLoader {
	return r.graphs
}

// RegisterShipHandlers registers every ship action and ship query
func (r *HandlerRegistry) RegisterShipHandlers(m mediator.Mediator) error {
	return registerAll(m, []registration{
		{&shipTypes.OrbitShipCommand{}, shipCmd.NewOrbitShipHandler(r.support)},
		{&shipTypes.DockShipCommand{}, shipCmd.NewDockShipHandler(r.support)},
		{&shipTypes.SetFlightModeCommand{}, shipCmd.NewSetFlightModeHandler(r.support)},
		{&shipTypes.NavigateShipCommand{}, shipCmd.NewNavigateShipHandler(r.support)},
		{&shipTypes.RefuelShipCommand{}, shipCmd.NewRefuelShipHandler(r.support)},
		{&shipTypes.PurchaseCargoCommand{}, shipCmd.NewPurchaseCargoHandler(r.support)},
		{&shipTypes.SellCargoCommand{}, shipCmd.NewSellCargoHandler(r.support)},
		{&shipTypes.SellAllCargoCommand{}, shipCmd.NewSellAllCargoHandler(r.support)},
		{&shipTypes.JettisonCargoCommand{}, shipCmd.NewJettisonCargoHandler(r.support)},
		{&shipTypes.ExtractResourcesCommand{}, shipCmd.NewExtractResourcesHandler(r.support)},
		{&shipTypes.SiphonResourcesCommand{}, shipCmd.NewSiphonResourcesHandler(r.support)},
		{&shipTypes.RefreshShipCommand{}, shipCmd.NewRefreshShipHandler(r.support)},
		{&shipQuery.GetShipQuery{}, shipQuery.NewGetShipHandler(r.repos.Ships, r.clock)},
		{&shipQuery.ListShipsQuery{}, shipQuery.NewListShipsHandler(r.repos.Ships)},
	})
}

// RegisterTradingHandlers registers the market, arbitrage and route queries
func (r *HandlerRegistry) RegisterTradingHandlers(m mediator.Mediator) error {
	return registerAll(m, []registration{
		{&tradingQuery.ArbitrageQuery{}, tradingQuery.NewArbitrageHandler(r.graphs)},
		{&tradingQuery.BestExportQuery{}, tradingQuery.NewBestExportHandler(r.graphs)},
		{&tradingQuery.SystemTradePairsQuery{}, tradingQuery.NewSystemTradePairsHandler(r.graphs)},
		{&tradingQuery.TradeRoutesQuery{}, tradingQuery.NewTradeRoutesHandler(r.graphs, r.opts.Routes)},
		{&tradingQuery.GetMarketQuery{}, tradingQuery.NewGetMarketHandler(r.support)},
	})
}

// RegisterBehaviorHandlers registers behavior steps and their lifecycle
func (r *HandlerRegistry) RegisterBehaviorHandlers(m mediator.Mediator) error {
	return registerAll(m, []registration{
		{&appBehavior.TradeCycleCommand{}, appBehavior.NewTradeCycleHandler(r.driver)},
		{&appBehavior.ExtractUntilFullCommand{}, appBehavior.NewExtractUntilFullHandler(r.driver)},
		{&appBehavior.StartBehaviorCommand{}, appBehavior.NewStartBehaviorHandler(r.driver)},
		{&appBehavior.StopBehaviorCommand{}, appBehavior.NewStopBehaviorHandler(r.driver)},
		{&appBehavior.ResumeContinuationCommand{}, appBehavior.NewResumeContinuationHandler(r.driver)},
	})
}

// RegisterCatalogHandlers registers the cache sync commands
func (r *HandlerRegistry) RegisterCatalogHandlers(m mediator.Mediator) error {
	return registerAll(m, []registration{
		{&catalog.SyncAgentCommand{}, catalog.NewSyncAgentHandler(r.sync)},
		{&catalog.SyncSystemCommand{}, catalog.NewSyncSystemHandler(r.sync)},
		{&catalog.SyncShipsCommand{}, catalog.NewSyncShipsHandler(r.sync)},
		{&catalog.SyncContractsCommand{}, catalog.NewSyncContractsHandler(r.sync)},
		{&catalog.SyncAllCommand{}, catalog.NewSyncAllHandler(r.sync)},
	})
}

// RegisterQueryHandlers registers the cache-backed read queries
func (r *HandlerRegistry) RegisterQueryHandlers(m mediator.Mediator) error {
	return registerAll(m, []registration{
		{&ledgerQuery.GetTransactionsQuery{}, ledgerQuery.NewGetTransactionsHandler(r.repos.Transactions)},
		{&ledgerQuery.GetProfitLossQuery{}, ledgerQuery.NewGetProfitLossHandler(r.repos.Transactions)},
		{&shipyardQuery.GetShipyardListingsQuery{}, shipyardQuery.NewGetShipyardListingsHandler(r.apiClient, r.repos.Shipyards)},
		{&playerQuery.GetAgentQuery{}, playerQuery.NewGetAgentHandler(r.repos.Agents, r.apiClient)},
		{&contractQuery.ListContractsQuery{}, contractQuery.NewListContractsHandler(r.repos.Contracts)},
	})
}

// CreateConfiguredMediator creates a new mediator with every handler registered.
// Middlewares run outermost first.
func (r *HandlerRegistry) CreateConfiguredMediator(middlewares ...mediator.Middleware) (mediator.Mediator, error) {
	m := mediator.NewMediator()
	for _, mw := range middlewares {
		m.Use(mw)
	}

	for _, register := range []func(mediator.Mediator) error{
		r.RegisterShipHandlers,
		r.RegisterTradingHandlers,
		r.RegisterBehaviorHandlers,
		r.RegisterCatalogHandlers,
		r.RegisterQueryHandlers,
	} {
		if err := register(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type registration struct {
	request mediator.Request
	handler mediator.RequestHandler
}

func registerAll(m mediator.Mediator, registrations []registration) error {
	for _, reg := range registrations {
		if err := m.Register(reflect.TypeOf(reg.request), reg.handler); err != nil {
			return err
		}
	}
	return nil
}
