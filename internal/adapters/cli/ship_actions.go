package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// runShipAction sends one ship command and prints its outcome. A result that
// is neither applied nor a no-op becomes the command's error.
func runShipAction(shipFlag string, build func(ship string) mediator.Request) error {
	symbol, err := resolveShip(shipFlag)
	if err != nil {
		return err
	}
	format, err := resolveOutputFormat()
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, app *App) error {
		response, err := app.Mediator.Send(ctx, build(symbol))
		if err != nil {
			return err
		}
		result, ok := response.(*shipTypes.ActionResult)
		if !ok {
			return fmt.Errorf("unexpected response type %T", response)
		}

		v := newActionView(result, app.Clock.Now())
		if err := render(os.Stdout, format, v, func(w *tabwriter.Writer) {
			printActionResult(w, v)
		}); err != nil {
			return err
		}
		return result.Err()
	})
}

func printActionResult(w *tabwriter.Writer, v actionView) {
	mark := "✓"
	if v.Outcome != string(shipTypes.OutcomeApplied) && v.Outcome != string(shipTypes.OutcomeNoop) {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s %s\n", mark, strings.ToLower(v.Action), v.Outcome)
	fmt.Fprintf(w, "  Ship:\t%s\n", v.Ship)
	if v.Reason != "" {
		fmt.Fprintf(w, "  Reason:\t%s\n", v.Reason)
	}
	if v.FailureCode != 0 {
		fmt.Fprintf(w, "  Error Code:\t%d\n", v.FailureCode)
	}
	if v.Yield != "" {
		fmt.Fprintf(w, "  Yield:\t%d x %s\n", v.Units, v.Yield)
	} else if v.Units > 0 {
		fmt.Fprintf(w, "  Units:\t%d\n", v.Units)
	}
	if v.TotalPrice > 0 {
		fmt.Fprintf(w, "  Total Price:\t%d\n", v.TotalPrice)
	}
	if v.Arrival != "" {
		fmt.Fprintf(w, "  Arrival:\t%s\n", v.Arrival)
	}
	if v.Cooldown > 0 {
		fmt.Fprintf(w, "  Cooldown:\t%.0fs\n", v.Cooldown)
	}
	if v.State != nil {
		fmt.Fprintf(w, "  Location:\t%s (%s)\n", v.State.Waypoint, v.State.Status)
		fmt.Fprintf(w, "  Fuel:\t%d / %d\n", v.State.Fuel, v.State.FuelCapacity)
		fmt.Fprintf(w, "  Cargo:\t%d / %d\n", v.State.CargoUnits, v.State.CargoCapacity)
	}
}

// newOrbitCommand creates the orbit subcommand
func newOrbitCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "Put a ship into orbit",
		Long: `Put a docked ship into orbit. Already orbiting is a no-op.

Example:
  spacetraders ship orbit --ship AGENT-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.OrbitShipCommand{ShipSymbol: ship}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

// newDockCommand creates the dock subcommand
func newDockCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "dock",
		Short: "Dock a ship at its current waypoint",
		Long: `Dock an orbiting ship. Already docked is a no-op.

Example:
  spacetraders ship dock --ship AGENT-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.DockShipCommand{ShipSymbol: ship}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

// newNavigateCommand creates the navigate subcommand
func newNavigateCommand() *cobra.Command {
	var shipSymbol, destination string

	cmd := &cobra.Command{
		Use:   "navigate",
		Short: "Fly a ship to a waypoint in its system",
		Long: `Navigate a ship to a waypoint in the same system in a single hop.

The ship is put into orbit first when docked. When its fuel cannot cover
the trip the flight mode drops to DRIFT. The command returns at departure;
use 'ship sleep-until' to wait for the arrival.

Example:
  spacetraders ship navigate --ship AGENT-1 --destination X1-GZ7-B1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if destination == "" {
				return fmt.Errorf("--destination flag is required")
			}
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.NavigateShipCommand{ShipSymbol: ship, Destination: destination}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().StringVar(&destination, "destination", "", "Destination waypoint symbol (required)")

	return cmd
}

// newFlightModeCommand creates the flight-mode subcommand
func newFlightModeCommand() *cobra.Command {
	var shipSymbol, mode string

	cmd := &cobra.Command{
		Use:   "flight-mode",
		Short: "Set a ship's flight mode",
		Long: `Set the flight mode used for the next trip: CRUISE, DRIFT, BURN or STEALTH.

Example:
  spacetraders ship flight-mode --ship AGENT-1 --mode BURN`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := shared.ParseFlightMode(strings.ToUpper(mode))
			if err != nil {
				return err
			}
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.SetFlightModeCommand{ShipSymbol: ship, Mode: parsed}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().StringVar(&mode, "mode", "", "Flight mode (required)")

	return cmd
}

// newRefuelCommand creates the refuel subcommand
func newRefuelCommand() *cobra.Command {
	var (
		shipSymbol string
		units      int
		fromCargo  bool
	)

	cmd := &cobra.Command{
		Use:   "refuel",
		Short: "Refuel a ship at its current market",
		Long: `Refuel a ship, docking first when needed. Without --units the tank is filled.

Examples:
  spacetraders ship refuel --ship AGENT-1
  spacetraders ship refuel --ship AGENT-1 --units 100 --from-cargo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.RefuelShipCommand{ShipSymbol: ship, Units: intPtr(units), FromCargo: fromCargo}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().IntVar(&units, "units", 0, "Fuel units to buy (default: fill the tank)")
	cmd.Flags().BoolVar(&fromCargo, "from-cargo", false, "Refuel from FUEL held in cargo")

	return cmd
}

// newBuyCommand creates the buy subcommand
func newBuyCommand() *cobra.Command {
	var (
		shipSymbol string
		good       string
		units      int
	)

	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy cargo at the current market",
		Long: `Purchase a trade good at the ship's market, docking first when needed.

Without --units the ship buys as much as one transaction allows and its
hold can take.

Example:
  spacetraders ship buy --ship AGENT-1 --good IRON_ORE --units 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if good == "" {
				return fmt.Errorf("--good flag is required")
			}
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.PurchaseCargoCommand{ShipSymbol: ship, TradeSymbol: strings.ToUpper(good), Units: intPtr(units)}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().StringVar(&good, "good", "", "Trade good symbol (required)")
	cmd.Flags().IntVar(&units, "units", 0, "Units to buy (default: as many as fit)")

	return cmd
}

// newSellCommand creates the sell subcommand
func newSellCommand() *cobra.Command {
	var (
		shipSymbol string
		good       string
		units      int
	)

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell cargo at the current market",
		Long: `Sell a held trade good at the ship's market, docking first when needed.

Without --units every held unit is sold.

Example:
  spacetraders ship sell --ship AGENT-1 --good IRON_ORE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if good == "" {
				return fmt.Errorf("--good flag is required")
			}
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.SellCargoCommand{ShipSymbol: ship, TradeSymbol: strings.ToUpper(good), Units: intPtr(units)}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().StringVar(&good, "good", "", "Trade good symbol (required)")
	cmd.Flags().IntVar(&units, "units", 0, "Units to sell (default: everything held)")

	return cmd
}

// newSellAllCommand creates the sell-all subcommand
func newSellAllCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "sell-all",
		Short: "Sell every good the current market buys",
		Long: `Sell all held cargo the ship's market trades.

Example:
  spacetraders ship sell-all --ship AGENT-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.SellAllCargoCommand{ShipSymbol: ship}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

// newJettisonCommand creates the jettison subcommand
func newJettisonCommand() *cobra.Command {
	var (
		shipSymbol string
		good       string
		units      int
	)

	cmd := &cobra.Command{
		Use:   "jettison",
		Short: "Dump cargo into space",
		Long: `Jettison a held trade good. Without --units every held unit is dumped.

Example:
  spacetraders ship jettison --ship AGENT-1 --good ICE_WATER`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if good == "" {
				return fmt.Errorf("--good flag is required")
			}
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.JettisonCargoCommand{ShipSymbol: ship, TradeSymbol: strings.ToUpper(good), Units: intPtr(units)}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().StringVar(&good, "good", "", "Trade good symbol (required)")
	cmd.Flags().IntVar(&units, "units", 0, "Units to jettison (default: everything held)")

	return cmd
}

// newExtractCommand creates the extract subcommand
func newExtractCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Mine the current waypoint",
		Long: `Extract resources at the ship's waypoint, orbiting first when needed.
Reports IN_COOLDOWN with the remaining seconds while the mount recharges.

Example:
  spacetraders ship extract --ship AGENT-3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.ExtractResourcesCommand{ShipSymbol: ship}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}

// newSiphonCommand creates the siphon subcommand
func newSiphonCommand() *cobra.Command {
	var shipSymbol string

	cmd := &cobra.Command{
		Use:   "siphon",
		Short: "Siphon gas at the current waypoint",
		Long: `Siphon resources at a gas giant, orbiting first when needed.

Example:
  spacetraders ship siphon --ship AGENT-4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipAction(shipSymbol, func(ship string) mediator.Request {
				return &shipTypes.SiphonResourcesCommand{ShipSymbol: ship}
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")

	return cmd
}
