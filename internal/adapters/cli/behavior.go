package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	grpcAdapter "github.com/ropable/spacetraders-api/internal/adapters/grpc"
	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

// daemonRequestTimeout bounds one control request to the daemon
const daemonRequestTimeout = 30 * time.Second

type continuationView struct {
	ID        string `json:"id" yaml:"id"`
	Ship      string `json:"ship" yaml:"ship"`
	Action    string `json:"action" yaml:"action"`
	Status    string `json:"status" yaml:"status"`
	DueAt     string `json:"dueAt" yaml:"dueAt"`
	LastError string `json:"lastError,omitempty" yaml:"lastError,omitempty"`
}

// NewBehaviorCommand creates the behavior command with subcommands
func NewBehaviorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "behavior",
		Short: "Start and stop ship behaviors in the daemon",
		Long: `Annotate ships with a behavior and let the daemon drive them.

TRADE buys the best export of the ship's market and sells it at the best
destination, forever. MINE extracts until the hold is full. The daemon
must be running ('spacetraders daemon run').

Examples:
  spacetraders behavior start --ship AGENT-1 --behavior TRADE
  spacetraders behavior start --ship AGENT-3 --behavior MINE
  spacetraders behavior list
  spacetraders behavior stop --ship AGENT-1`,
	}

	cmd.AddCommand(newBehaviorStartCommand())
	cmd.AddCommand(newBehaviorStopCommand())
	cmd.AddCommand(newBehaviorListCommand())

	return cmd
}

func newBehaviorStartCommand() *cobra.Command {
	var shipSymbol, behaviorName, target string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a behavior on a ship",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := resolveShip(shipSymbol)
			if err != nil {
				return err
			}
			if behaviorName == "" {
				return fmt.Errorf("--behavior flag is required")
			}

			return withDaemon(cmd, func(ctx context.Context, client *grpcAdapter.DaemonClientGRPC) error {
				result, err := client.StartBehavior(ctx, symbol, strings.ToUpper(behaviorName), strings.ToUpper(target))
				if err != nil {
					return fmt.Errorf("failed to start behavior: %w", err)
				}
				fmt.Println("✓ Behavior started")
				fmt.Printf("  Ship:          %s\n", result.ShipSymbol)
				fmt.Printf("  Behavior:      %s\n", result.Behavior)
				if result.ContinuationID != "" {
					fmt.Printf("  Continuation:  %s\n", result.ContinuationID)
					fmt.Printf("  Due At:        %s\n", result.DueAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().StringVar(&behaviorName, "behavior", "", "Behavior: TRADE or MINE (required)")
	cmd.Flags().StringVar(&target, "target", "", "Resource to keep when mining (others are jettisoned)")

	return cmd
}

func newBehaviorStopCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a ship's behavior and cancel its pending steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := resolveShip(shipSymbol)
			if err != nil {
				return err
			}

			return withDaemon(cmd, func(ctx context.Context, client *grpcAdapter.DaemonClientGRPC) error {
				result, err := client.StopBehavior(ctx, symbol)
				if err != nil {
					return fmt.Errorf("failed to stop behavior: %w", err)
				}
				fmt.Printf("✓ Behavior stopped on %s (%d pending steps cancelled)\n", result.ShipSymbol, result.Cancelled)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

func newBehaviorListCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending behavior steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withDaemon(cmd, func(ctx context.Context, client *grpcAdapter.DaemonClientGRPC) error {
				infos, err := client.ListContinuations(ctx, shipSymbol)
				if err != nil {
					return fmt.Errorf("failed to list continuations: %w", err)
				}

				views := make([]continuationView, 0, len(infos))
				for _, info := range infos {
					views = append(views, continuationView{
						ID:        info.ID,
						Ship:      info.ShipSymbol,
						Action:    info.Action,
						Status:    info.Status,
						DueAt:     info.DueAt.Format(time.RFC3339),
						LastError: info.LastError,
					})
				}
				if format == outputTable && len(views) == 0 {
					fmt.Println("No pending continuations.")
					return nil
				}
				return render(os.Stdout, format, views, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "SHIP\tACTION\tSTATUS\tDUE AT\tID")
					fmt.Fprintln(w, "----\t------\t------\t------\t--")
					for _, v := range views {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.Ship, v.Action, v.Status, v.DueAt, v.ID)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Only this ship")

	return cmd
}

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		Long:  `Verify that the daemon is running and responsive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDaemon(cmd, func(ctx context.Context, client *grpcAdapter.DaemonClientGRPC) error {
				pong, err := client.Ping(ctx)
				if err != nil {
					return fmt.Errorf("health check failed: %w", err)
				}
				fmt.Println("✓ Daemon is healthy")
				fmt.Printf("  Status:        %s\n", pong.Status)
				fmt.Printf("  Armed Timers:  %d\n", pong.ArmedTimers)
				return nil
			})
		},
	}

	return cmd
}

// withDaemon dials the daemon socket and runs fn under a request timeout
func withDaemon(cmd *cobra.Command, fn func(ctx context.Context, client *grpcAdapter.DaemonClientGRPC) error) error {
	client, err := grpcAdapter.NewDaemonClientGRPC(daemonSocket(cmd, config.LoadConfigOrDefault(configPath)))
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), daemonRequestTimeout)
	defer cancel()
	return fn(ctx, client)
}
