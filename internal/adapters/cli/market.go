package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	tradingQuery "github.com/ropable/spacetraders-api/internal/application/trading/queries"
)

// NewMarketCommand creates the market command with subcommands
func NewMarketCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "View market data",
		Long: `Query market data for a waypoint.

Markets show trade goods with supply, activity, purchase prices, sell prices,
and trade volumes. 'get' reads the cache and fetches only on a miss;
'refresh' always fetches the live market.

Examples:
  spacetraders market get --waypoint X1-GZ7-B2
  spacetraders market refresh --waypoint X1-GZ7-B2 --output json`,
	}

	cmd.AddCommand(newMarketGetCommand(false))
	cmd.AddCommand(newMarketGetCommand(true))

	return cmd
}

// newMarketGetCommand creates the market get or refresh subcommand
func newMarketGetCommand(refresh bool) *cobra.Command {
	var waypointSymbol string

	use, short := "get", "Show the cached market at a waypoint"
	if refresh {
		use, short = "refresh", "Fetch the live market at a waypoint and cache it"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if waypointSymbol == "" {
				return fmt.Errorf("--waypoint flag is required")
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &tradingQuery.GetMarketQuery{WaypointSymbol: waypointSymbol, Refresh: refresh})
				if err != nil {
					return fmt.Errorf("failed to get market: %w", err)
				}
				m := response.(*tradingQuery.GetMarketResponse).Market
				return render(os.Stdout, format, m, func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "Market %s (updated %s)\n\n", m.WaypointSymbol, m.LastUpdated)
					fmt.Fprintln(w, "GOOD\tROLE\tSUPPLY\tACTIVITY\tBUY\tSELL\tVOLUME")
					fmt.Fprintln(w, "----\t----\t------\t--------\t---\t----\t------")
					for _, g := range m.Goods {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
							g.TradeSymbol, g.Role, g.Supply, g.Activity, g.PurchasePrice, g.SellPrice, g.TradeVolume)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&waypointSymbol, "waypoint", "", "Waypoint symbol (required)")

	return cmd
}
