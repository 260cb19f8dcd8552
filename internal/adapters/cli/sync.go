package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ropable/spacetraders-api/internal/application/catalog"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
)

// NewSyncCommand creates the sync command with subcommands
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local cache from the API",
		Long: `Fetch state from the SpaceTraders API and upsert it into the cache.

Every request goes through the shared rate limiter (30 requests per minute),
so a full system sync takes a while.

Examples:
  spacetraders sync agent
  spacetraders sync system --system X1-GZ7 --markets --shipyards
  spacetraders sync ships
  spacetraders sync all`,
	}

	cmd.AddCommand(newSyncAgentCommand())
	cmd.AddCommand(newSyncSystemCommand())
	cmd.AddCommand(newSyncShipsCommand())
	cmd.AddCommand(newSyncContractsCommand())
	cmd.AddCommand(newSyncAllCommand())

	return cmd
}

func newSyncAgentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Refresh the agent (credits, headquarters, ship count)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &catalog.SyncAgentCommand{})
				if err != nil {
					return fmt.Errorf("failed to sync agent: %w", err)
				}
				agent := response.(*catalog.SyncAgentResponse).Agent
				fmt.Printf("✓ Agent %s synced (%d credits, %d ships)\n", agent.Symbol, agent.Credits, agent.ShipCount)
				return nil
			})
		},
	}
}

func newSyncSystemCommand() *cobra.Command {
	var (
		systemSymbol string
		markets      bool
		shipyards    bool
	)

	cmd := &cobra.Command{
		Use:   "system",
		Short: "Cache a system's waypoints, optionally with markets and shipyards",
		Long: `Cache every waypoint of a system. With --markets each marketplace is
fetched too; with --shipyards each shipyard's listings are cached.

Example:
  spacetraders sync system --system X1-GZ7 --markets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := resolveSystem(systemSymbol)
			if err != nil {
				return err
			}
			return runSync(&catalog.SyncSystemCommand{SystemSymbol: symbol, Markets: markets, Shipyards: shipyards})
		},
	}

	cmd.Flags().StringVar(&systemSymbol, "system", "", "System symbol (default: configured system)")
	cmd.Flags().BoolVar(&markets, "markets", false, "Also fetch every market in the system")
	cmd.Flags().BoolVar(&shipyards, "shipyards", false, "Also fetch every shipyard in the system")

	return cmd
}

func newSyncShipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ships",
		Short: "Refresh every ship of the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &catalog.SyncShipsCommand{})
				if err != nil {
					return fmt.Errorf("failed to sync ships: %w", err)
				}
				fmt.Printf("✓ %d ships synced\n", len(response.(*catalog.SyncShipsResponse).Ships))
				return nil
			})
		},
	}
}

func newSyncContractsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "Refresh every contract of the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(&catalog.SyncContractsCommand{})
		},
	}
}

func newSyncAllCommand() *cobra.Command {
	var systems []string

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Refresh the agent, ships, contracts and systems",
		Long: `Refresh everything. Without --system the headquarters system and every
system holding a ship are synced, markets and shipyards included.

Examples:
  spacetraders sync all
  spacetraders sync all --system X1-GZ7 --system X1-AB12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(&catalog.SyncAllCommand{Systems: systems})
		},
	}

	cmd.Flags().StringSliceVar(&systems, "system", nil, "System to sync (repeatable)")

	return cmd
}

// runSync sends a sync command answered with a catalog.Report and prints it
func runSync(request mediator.Request) error {
	format, err := resolveOutputFormat()
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, app *App) error {
		response, err := app.Mediator.Send(ctx, request)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		report, ok := response.(*catalog.Report)
		if !ok {
			return fmt.Errorf("unexpected response type %T", response)
		}
		return render(os.Stdout, format, report, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "✓ Sync complete")
			if report.Agent != "" {
				fmt.Fprintf(w, "  Agent:\t%s\n", report.Agent)
			}
			if len(report.Systems) > 0 {
				fmt.Fprintf(w, "  Systems:\t%s\n", strings.Join(report.Systems, ", "))
			}
			fmt.Fprintf(w, "  Waypoints:\t%d\n", report.Waypoints)
			fmt.Fprintf(w, "  Markets:\t%d\n", report.Markets)
			fmt.Fprintf(w, "  Shipyards:\t%d\n", report.Shipyards)
			fmt.Fprintf(w, "  Ships:\t%d\n", report.Ships)
			fmt.Fprintf(w, "  Contracts:\t%d\n", report.Contracts)
		})
	})
}
