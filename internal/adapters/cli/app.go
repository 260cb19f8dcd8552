package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/ropable/spacetraders-api/internal/adapters/api"
	"github.com/ropable/spacetraders-api/internal/adapters/persistence"
	appBehavior "github.com/ropable/spacetraders-api/internal/application/behavior"
	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/setup"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/trading"
	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
	"github.com/ropable/spacetraders-api/internal/infrastructure/database"
)

// errDaemonOnly is returned when a behavior step is scheduled outside the daemon
var errDaemonOnly = errors.New("behaviors are scheduled by the daemon: use 'spacetraders behavior start'")

// App wires configuration, the cache database, the API client and the
// mediator for one CLI invocation or one daemon process
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Client   *api.SpaceTradersClient
	Repos    setup.Repositories
	Registry *setup.HandlerRegistry
	Mediator mediator.Mediator
	Logger   common.Logger
	Clock    shared.Clock

	logFile io.Closer
}

// appOptions customizes the bootstrap. The daemon injects its scheduler,
// the metrics recorder and the metrics middleware.
type appOptions struct {
	// config skips loading when the caller already has one
	config      *config.Config
	scheduler   func(repos setup.Repositories, clock shared.Clock, logger common.Logger) behavior.Scheduler
	recorder    api.RequestRecorder
	middlewares []mediator.Middleware
}

// newApp loads configuration and builds every dependency
func newApp(opts appOptions) (*App, error) {
	cfg := opts.config
	if cfg == nil {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	token, err := cfg.RequireToken()
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	clock := shared.NewRealClock()
	maxRetries := cfg.API.Retry.MaxAttempts
	if maxRetries == 0 {
		maxRetries = -1
	}
	client := api.NewSpaceTradersClientWithConfig(api.Config{
		BaseURL:      cfg.API.BaseURL,
		Token:        token,
		Timeout:      cfg.API.Timeout,
		MaxRetries:   maxRetries,
		BackoffBase:  cfg.API.Retry.BackoffBase,
		RateRequests: cfg.API.RateLimit.Requests,
		RatePeriod:   cfg.API.RateLimit.Period,
		RateBurst:    cfg.API.RateLimit.Burst,
		Clock:        clock,
		Recorder:     opts.recorder,
	})

	repos := setup.Repositories{
		Ships:         persistence.NewGormShipRepository(db),
		Markets:       persistence.NewMarketRepository(db),
		Transactions:  persistence.NewGormTransactionRepository(db),
		Waypoints:     persistence.NewGormWaypointRepository(db),
		Agents:        persistence.NewGormAgentRepository(db),
		Contracts:     persistence.NewGormContractRepository(db),
		Shipyards:     persistence.NewGormShipyardRepository(db),
		Continuations: persistence.NewGormContinuationRepository(db),
	}

	var scheduler behavior.Scheduler = offlineScheduler{}
	if opts.scheduler != nil {
		scheduler = opts.scheduler(repos, clock, logger)
	}

	registry := setup.NewHandlerRegistry(client, repos, clock, scheduler,
		appBehavior.NewLockedRandom(time.Now().UnixNano()),
		setup.Options{
			Behavior: appBehavior.Options{
				ArrivalBuffer:          cfg.Behavior.ArrivalBuffer,
				RandomExportCandidates: cfg.Behavior.RandomExportCandidates,
			},
			Routes: trading.RouteOptions{
				LengthSlack: cfg.Behavior.RouteLengthSlack,
				MaxDepth:    cfg.Behavior.MaxRouteDepth,
			},
			SyncConcurrency: cfg.Behavior.SyncConcurrency,
		})

	med, err := registry.CreateConfiguredMediator(opts.middlewares...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mediator: %w", err)
	}

	return &App{
		Config:   cfg,
		DB:       db,
		Client:   client,
		Repos:    repos,
		Registry: registry,
		Mediator: med,
		Logger:   logger,
		Clock:    clock,
		logFile:  logFile,
	}, nil
}

// Context returns a context carrying the app logger
func (a *App) Context(parent context.Context) context.Context {
	return common.WithLogger(parent, a.Logger)
}

// Close releases the database and the log file
func (a *App) Close() {
	if err := database.Close(a.DB); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func newLogger(cfg *config.LoggingConfig) (common.Logger, io.Closer, error) {
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	switch cfg.Output {
	case "stdout":
		return common.NewStdLogger(os.Stdout, level, cfg.Format), nil, nil
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return common.NewStdLogger(f, level, cfg.Format), f, nil
	default:
		return common.NewStdLogger(os.Stderr, level, cfg.Format), nil, nil
	}
}

// offlineScheduler refuses continuations; only the daemon runs behaviors
type offlineScheduler struct{}

func (offlineScheduler) ScheduleAt(ctx context.Context, c *behavior.Continuation) error {
	return errDaemonOnly
}

func (offlineScheduler) ScheduleNow(ctx context.Context, c *behavior.Continuation) error {
	return errDaemonOnly
}
