package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	shipQuery "github.com/ropable/spacetraders-api/internal/application/ship/queries"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// NewShipCommand creates the ship command with subcommands
func NewShipCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ship",
		Short: "Inspect and command ships",
		Long: `Inspect cached ships and run single ship actions.

Every action reconciles the cache with the server's response. Actions are
idempotent: docking a docked ship is a no-op, not an error.

Examples:
  spacetraders ship list
  spacetraders ship info --ship AGENT-1
  spacetraders ship orbit --ship AGENT-1
  spacetraders ship navigate --ship AGENT-1 --destination X1-GZ7-B1
  spacetraders ship buy --ship AGENT-1 --good IRON_ORE --units 20
  spacetraders ship sleep-until --ship AGENT-1`,
	}

	// Add subcommands
	cmd.AddCommand(newShipListCommand())
	cmd.AddCommand(newShipInfoCommand())
	cmd.AddCommand(newShipRefreshCommand())
	cmd.AddCommand(newOrbitCommand())
	cmd.AddCommand(newDockCommand())
	cmd.AddCommand(newNavigateCommand())
	cmd.AddCommand(newFlightModeCommand())
	cmd.AddCommand(newRefuelCommand())
	cmd.AddCommand(newBuyCommand())
	cmd.AddCommand(newSellCommand())
	cmd.AddCommand(newSellAllCommand())
	cmd.AddCommand(newJettisonCommand())
	cmd.AddCommand(newExtractCommand())
	cmd.AddCommand(newSiphonCommand())
	cmd.AddCommand(newSleepUntilCommand())

	return cmd
}

// newShipListCommand creates the ship list subcommand
func newShipListCommand() *cobra.Command {
	var behaviorFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached ships",
		Long: `List every cached ship, optionally only those running a behavior.

Run 'spacetraders sync ships' first to refresh the cache.

Examples:
  spacetraders ship list
  spacetraders ship list --behavior TRADE --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}
			var filter navigation.Behavior
			if behaviorFilter != "" {
				if filter, err = navigation.ParseBehavior(behaviorFilter); err != nil {
					return err
				}
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &shipQuery.ListShipsQuery{Behavior: filter})
				if err != nil {
					return fmt.Errorf("failed to list ships: %w", err)
				}
				result := response.(*shipQuery.ListShipsResponse)

				now := app.Clock.Now()
				views := make([]shipView, 0, len(result.Ships))
				for _, s := range result.Ships {
					views = append(views, newShipView(s, now))
				}

				if format == outputTable && len(views) == 0 {
					fmt.Println("No ships found.")
					return nil
				}
				return render(os.Stdout, format, views, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "SHIP SYMBOL\tLOCATION\tSTATUS\tMODE\tFUEL\tCARGO\tBEHAVIOR")
					fmt.Fprintln(w, "-----------\t--------\t------\t----\t----\t-----\t--------")
					for _, v := range views {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%d/%d\t%s\n",
							v.Symbol, v.Waypoint, v.Status, v.FlightMode,
							v.Fuel, v.FuelCapacity, v.CargoUnits, v.CargoCapacity, v.Behavior)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&behaviorFilter, "behavior", "", "Only ships annotated with this behavior (TRADE, MINE, HAUL)")

	return cmd
}

// newShipInfoCommand creates the ship info subcommand
func newShipInfoCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show detailed ship information",
		Long: `Show the cached state of one ship: location, navigation, fuel, cargo,
and the time left until arrival or cooldown expiry.

Examples:
  spacetraders ship info --ship AGENT-1
  spacetraders ship info --ship AGENT-1 --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := resolveShip(shipSymbol)
			if err != nil {
				return err
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &shipQuery.GetShipQuery{ShipSymbol: symbol})
				if err != nil {
					return fmt.Errorf("failed to get ship: %w", err)
				}
				v := newShipView(response.(*shipQuery.GetShipResponse).Ship, app.Clock.Now())
				return render(os.Stdout, format, v, func(w *tabwriter.Writer) {
					printShipDetails(w, v)
				})
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

func printShipDetails(w *tabwriter.Writer, v shipView) {
	fmt.Fprintf(w, "Ship Symbol:\t%s\n", v.Symbol)
	if v.Role != "" {
		fmt.Fprintf(w, "Role:\t%s\n", v.Role)
	}
	fmt.Fprintf(w, "Location:\t%s\n", v.Waypoint)
	fmt.Fprintf(w, "Nav Status:\t%s\n", v.Status)
	fmt.Fprintf(w, "Flight Mode:\t%s\n", v.FlightMode)
	fmt.Fprintf(w, "Fuel:\t%d / %d\n", v.Fuel, v.FuelCapacity)
	fmt.Fprintf(w, "Cargo:\t%d / %d units\n", v.CargoUnits, v.CargoCapacity)
	fmt.Fprintf(w, "Behavior:\t%s\n", v.Behavior)
	if v.Route != nil {
		fmt.Fprintf(w, "Route:\t%s -> %s\n", v.Route.Origin, v.Route.Destination)
		fmt.Fprintf(w, "Arrival:\t%s (in %.0fs)\n", v.Route.Arrival, v.ArrivalIn)
	}
	if v.CooldownRemaining > 0 {
		fmt.Fprintf(w, "Cooldown:\t%.0fs\n", v.CooldownRemaining)
	}
	for _, item := range v.Cargo {
		fmt.Fprintf(w, "  - %s:\t%d units\n", item.Symbol, item.Units)
	}
}

// newShipRefreshCommand creates the ship refresh subcommand
func newShipRefreshCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload a ship from the server",
		Long: `Fetch the live ship and overwrite the cached copy.

Example:
  spacetraders ship refresh --ship AGENT-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.RefreshShipCommand{ShipSymbol: ship}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

// newSleepUntilCommand creates the sleep-until subcommand
func newSleepUntilCommand() *cobra.Command {
	var (
		shipSymbol string
		buffer     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sleep-until",
		Short: "Block until a ship arrives",
		Long: `Refresh a ship and block until its current trip ends, then refresh it again.

Intended for scripts and interactive use. The daemon never sleeps; it
schedules a continuation at the arrival time instead.

Example:
  spacetraders ship navigate --ship AGENT-1 --destination X1-GZ7-B1 && \
    spacetraders ship sleep-until --ship AGENT-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := resolveShip(shipSymbol)
			if err != nil {
				return err
			}

			app, err := newApp(appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(app.Context(context.Background()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			wait, err := refreshAndMeasure(ctx, app, symbol)
			if err != nil {
				return err
			}
			if wait <= 0 {
				fmt.Printf("%s is not in transit.\n", symbol)
				return nil
			}

			fmt.Printf("Sleeping %s until %s arrives...\n", (wait + buffer).Round(time.Second), symbol)
			timer := time.NewTimer(wait + buffer)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}

			if _, err := refreshAndMeasure(ctx, app, symbol); err != nil {
				return err
			}
			fmt.Printf("✓ %s arrived\n", symbol)
			return nil
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().DurationVar(&buffer, "buffer", time.Second, "Extra time to wait past the arrival")

	return cmd
}

// refreshAndMeasure reloads the ship and returns the time left in transit
func refreshAndMeasure(ctx context.Context, app *App, symbol string) (time.Duration, error) {
	response, err := app.Mediator.Send(ctx, &shipTypes.RefreshShipCommand{ShipSymbol: symbol})
	if err != nil {
		return 0, fmt.Errorf("failed to refresh ship: %w", err)
	}
	result := response.(*shipTypes.ActionResult)
	if !result.OK() {
		return 0, result.Err()
	}
	if result.Ship == nil {
		return 0, nil
	}
	return result.Ship.TimeUntilArrival(app.Clock.Now()), nil
}
