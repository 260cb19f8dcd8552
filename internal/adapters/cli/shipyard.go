package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	shipyardQuery "github.com/ropable/spacetraders-api/internal/application/shipyard/queries"
)

type shipyardView struct {
	Waypoint        string   `json:"waypoint" yaml:"waypoint"`
	ShipTypes       []string `json:"shipTypes" yaml:"shipTypes"`
	ModificationFee int      `json:"modificationFee" yaml:"modificationFee"`
	Cached          bool     `json:"cached" yaml:"cached"`
}

// NewShipyardCommand creates the shipyard command with subcommands
func NewShipyardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipyard",
		Short: "View shipyard listings",
		Long: `View the ship types a shipyard builds.

Examples:
  spacetraders shipyard list --waypoint X1-GZ7-A1
  spacetraders shipyard list --waypoint X1-GZ7-A1 --refresh`,
	}

	cmd.AddCommand(newShipyardListCommand())

	return cmd
}

func newShipyardListCommand() *cobra.Command {
	var (
		waypointSymbol string
		refresh        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the ship types at a shipyard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if waypointSymbol == "" {
				return fmt.Errorf("--waypoint flag is required")
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &shipyardQuery.GetShipyardListingsQuery{
					WaypointSymbol: waypointSymbol,
					Refresh:        refresh,
				})
				if err != nil {
					return fmt.Errorf("failed to get shipyard: %w", err)
				}
				result := response.(*shipyardQuery.GetShipyardListingsResponse)
				v := shipyardView{
					Waypoint:        result.Shipyard.WaypointSymbol,
					ShipTypes:       result.Shipyard.ShipTypes,
					ModificationFee: result.Shipyard.ModificationFee,
					Cached:          result.Cached,
				}

				return render(os.Stdout, format, v, func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "Shipyard:\t%s\n", v.Waypoint)
					fmt.Fprintf(w, "Modification Fee:\t%d\n", v.ModificationFee)
					fmt.Fprintln(w, "Ship Types:")
					for _, t := range v.ShipTypes {
						fmt.Fprintf(w, "  - %s\n", t)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&waypointSymbol, "waypoint", "", "Shipyard waypoint symbol (required)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the listings from the API")

	return cmd
}
