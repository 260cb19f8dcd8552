package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	grpcAdapter "github.com/ropable/spacetraders-api/internal/adapters/grpc"
	"github.com/ropable/spacetraders-api/internal/adapters/metrics"
	appBehavior "github.com/ropable/spacetraders-api/internal/application/behavior"
	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/application/setup"
	"github.com/ropable/spacetraders-api/internal/application/trading/services"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
	"github.com/ropable/spacetraders-api/internal/infrastructure/pidfile"
)

// marketMetricsInterval is how often trade pair gauges are recomputed
const marketMetricsInterval = 5 * time.Minute

// NewDaemonCommand creates the daemon command with subcommands
func NewDaemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run or inspect the behavior daemon",
		Long: `The daemon owns the continuation scheduler. It resumes persisted
continuations on startup, fires each one at its due time, and accepts
behavior start and stop requests on a Unix socket.

Examples:
  spacetraders daemon run
  spacetraders daemon status
  spacetraders daemon stop`,
	}

	cmd.AddCommand(newDaemonRunCommand())
	cmd.AddCommand(newDaemonStatusCommand())
	cmd.AddCommand(newDaemonStopCommand())

	return cmd
}

func newDaemonRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return RunDaemon(cfg, daemonSocket(cmd, cfg))
		},
	}
}

// RunDaemon wires the scheduler, metrics and gRPC server and blocks until shutdown
func RunDaemon(cfg *config.Config, socket string) error {
	pid := pidfile.New(cfg.Daemon.PIDFile)
	if err := pid.Acquire(); err != nil {
		return err
	}
	defer pid.Release()

	opts := appOptions{config: cfg}
	var scheduler *grpcAdapter.ContinuationScheduler
	opts.scheduler = func(repos setup.Repositories, clock shared.Clock, logger common.Logger) behavior.Scheduler {
		scheduler = grpcAdapter.NewContinuationScheduler(repos.Continuations, clock, logger)
		return scheduler
	}

	if cfg.Daemon.MetricsEnabled {
		metrics.InitRegistry()

		apiCollector := metrics.NewAPIMetricsCollector()
		commandCollector := metrics.NewCommandMetricsCollector()
		shipCollector := metrics.NewShipMetricsCollector()
		for _, c := range []interface{ Register() error }{apiCollector, commandCollector, shipCollector} {
			if err := c.Register(); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
		}
		metrics.SetGlobalShipCollector(shipCollector)

		opts.recorder = apiCollector
		opts.middlewares = []mediator.Middleware{metrics.PrometheusMiddleware(commandCollector)}
	}

	app, err := newApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(app.Context(context.Background()))
	defer cancel()

	scheduler.Bind(resumeFunc(app.Mediator, app.Logger))

	if cfg.Daemon.MetricsEnabled {
		stopMetrics, err := startDaemonMetrics(ctx, cfg, app, scheduler)
		if err != nil {
			return err
		}
		defer stopMetrics()
	}

	resumed, err := scheduler.ScheduleAllPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to resume continuations: %w", err)
	}
	app.Logger.Log("INFO", "continuations resumed", map[string]interface{}{"count": resumed})
	scheduler.StartBackgroundSweeper(cfg.Daemon.SweepInterval)

	server, err := grpcAdapter.NewDaemonServer(app.Mediator, scheduler, app.Repos.Continuations, socket, app.Logger)
	if err != nil {
		scheduler.Stop()
		return fmt.Errorf("failed to create daemon server: %w", err)
	}
	fmt.Printf("Daemon listening on %s (pid %d)\n", socket, os.Getpid())
	return server.Start()
}

// resumeFunc runs one continuation through the mediator. An aborted step is
// reported as an error so the continuation is marked FAILED.
func resumeFunc(med mediator.Mediator, logger common.Logger) grpcAdapter.RunFunc {
	return func(ctx context.Context, c *behavior.Continuation) error {
		response, err := med.Send(common.WithLogger(ctx, logger), &appBehavior.ResumeContinuationCommand{Continuation: c})
		if err != nil {
			return err
		}
		result, ok := response.(*appBehavior.CycleResult)
		if !ok {
			return fmt.Errorf("unexpected response type %T", response)
		}
		if result.Outcome == appBehavior.CycleAborted {
			return fmt.Errorf("%s aborted: %s", result.Action, result.Reason)
		}
		return nil
	}
}

// startDaemonMetrics registers the scheduler and market collectors and serves /metrics
func startDaemonMetrics(ctx context.Context, cfg *config.Config, app *App, scheduler *grpcAdapter.ContinuationScheduler) (func(), error) {
	behaviorCollector := metrics.NewBehaviorMetricsCollector(scheduler.PendingCount)
	if err := behaviorCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register behavior metrics: %w", err)
	}
	metrics.SetGlobalBehaviorCollector(behaviorCollector)

	scanner := services.NewOpportunityScanner(app.Registry.GraphLoader(), shipSystems(app.Repos.Ships))
	marketCollector := metrics.NewMarketMetricsCollector(scanner.Scan, marketMetricsInterval)
	if err := marketCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register market metrics: %w", err)
	}
	marketCollector.Start(ctx)

	server := metrics.NewServer(cfg.Daemon.MetricsAddr, "/metrics")
	if err := server.Start(); err != nil {
		marketCollector.Stop()
		return nil, err
	}

	return func() {
		marketCollector.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: metrics server shutdown: %v\n", err)
		}
	}, nil
}

// shipSystems lists the distinct systems the cached fleet is in
func shipSystems(ships navigation.ShipRepository) services.SystemLister {
	return func(ctx context.Context) ([]string, error) {
		fleet, err := ships.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(fleet))
		systems := make([]string, 0, len(fleet))
		for _, s := range fleet {
			if sys := s.SystemSymbol(); sys != "" && !seen[sys] {
				seen[sys] = true
				systems = append(systems, sys)
			}
		}
		sort.Strings(systems)
		return systems, nil
	}
}

func newDaemonStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfigOrDefault(configPath)
			pid, running := pidfile.New(cfg.Daemon.PIDFile).Running()
			if !running {
				fmt.Println("Daemon is not running.")
				return nil
			}
			fmt.Printf("Daemon is running (pid %d)\n", pid)

			client, err := grpcAdapter.NewDaemonClientGRPC(daemonSocket(cmd, cfg))
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			pong, err := client.Ping(ctx)
			if err != nil {
				return fmt.Errorf("daemon is not answering: %w", err)
			}
			fmt.Printf("  Status:        %s\n", pong.Status)
			fmt.Printf("  Armed Timers:  %d\n", pong.ArmedTimers)
			return nil
		},
	}
}

func newDaemonStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Send SIGTERM to the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfigOrDefault(configPath)
			pid, running := pidfile.New(cfg.Daemon.PIDFile).Running()
			if !running {
				fmt.Println("Daemon is not running.")
				return nil
			}
			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find daemon process: %w", err)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to signal daemon: %w", err)
			}
			fmt.Printf("✓ Sent SIGTERM to daemon (pid %d)\n", pid)
			return nil
		},
	}
}

// daemonSocket prefers an explicit --socket flag over the configured path
func daemonSocket(cmd *cobra.Command, cfg *config.Config) string {
	if cmd.Flags().Changed("socket") || cfg == nil {
		return socketPath
	}
	return cfg.Daemon.SocketPath
}
