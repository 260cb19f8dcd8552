package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	tradingQuery "github.com/ropable/spacetraders-api/internal/application/trading/queries"
)

// NewTradeCommand creates the trade command with subcommands
func NewTradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Analyze arbitrage and trade routes from cached markets",
		Long: `Rank trading opportunities inside one system using cached market data.

Exports are bought at their sell price and sold at the destination's
purchase price. Distances are the floor of the Euclidean distance.
Sync the system's markets first with 'spacetraders sync system --markets'.

Examples:
  spacetraders trade arbitrage --waypoint X1-GZ7-A1
  spacetraders trade best-export --waypoint X1-GZ7-A1
  spacetraders trade pairs --system X1-GZ7 --profitable
  spacetraders trade routes --system X1-GZ7 --start X1-GZ7-A1 --output yaml`,
	}

	cmd.AddCommand(newTradeArbitrageCommand())
	cmd.AddCommand(newTradeBestExportCommand())
	cmd.AddCommand(newTradePairsCommand())
	cmd.AddCommand(newTradeRoutesCommand())

	return cmd
}

// newTradeArbitrageCommand creates the trade arbitrage subcommand
func newTradeArbitrageCommand() *cobra.Command {
	var waypointSymbol, good string

	cmd := &cobra.Command{
		Use:   "arbitrage",
		Short: "Rank the destinations of every export of a market",
		Long: `For each export of the market, list the markets importing it, ranked by
spread per unit of distance.

Example:
  spacetraders trade arbitrage --waypoint X1-GZ7-A1 --good IRON_ORE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if waypointSymbol == "" {
				return fmt.Errorf("--waypoint flag is required")
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &tradingQuery.ArbitrageQuery{
					WaypointSymbol: waypointSymbol,
					TradeSymbol:    strings.ToUpper(good),
				})
				if err != nil {
					return fmt.Errorf("failed to compute arbitrage: %w", err)
				}
				result := response.(*tradingQuery.ArbitrageResponse)

				if format == outputTable && len(result.Exports) == 0 {
					fmt.Printf("No exports found at %s.\n", waypointSymbol)
					return nil
				}
				return render(os.Stdout, format, result, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "GOOD\tSELL\tDESTINATION\tDISTANCE\tSPREAD\tRATIO")
					fmt.Fprintln(w, "----\t----\t-----------\t--------\t------\t-----")
					for _, export := range result.Exports {
						if len(export.Destinations) == 0 {
							fmt.Fprintf(w, "%s\t%d\t-\t-\t-\t-\n", export.TradeSymbol, export.SellPrice)
							continue
						}
						for _, d := range export.Destinations {
							fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%.2f\n",
								export.TradeSymbol, export.SellPrice, d.WaypointSymbol, d.Distance, d.Spread, d.Ratio)
						}
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&waypointSymbol, "waypoint", "", "Market waypoint symbol (required)")
	cmd.Flags().StringVar(&good, "good", "", "Only this trade good")

	return cmd
}

// newTradeBestExportCommand creates the trade best-export subcommand
func newTradeBestExportCommand() *cobra.Command {
	var waypointSymbol string

	cmd := &cobra.Command{
		Use:   "best-export",
		Short: "Pick the export with the best destination ratio",
		Long: `Pick, among the exports of a market, the one whose best destination has
the highest spread per unit of distance. This is the choice the TRADE
behavior makes at every market.

Example:
  spacetraders trade best-export --waypoint X1-GZ7-A1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if waypointSymbol == "" {
				return fmt.Errorf("--waypoint flag is required")
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &tradingQuery.BestExportQuery{WaypointSymbol: waypointSymbol})
				if err != nil {
					return fmt.Errorf("failed to pick best export: %w", err)
				}
				result := response.(*tradingQuery.BestExportResponse)
				return render(os.Stdout, format, result, func(w *tabwriter.Writer) {
					if !result.Found {
						fmt.Fprintf(w, "No profitable export at %s.\n", waypointSymbol)
						return
					}
					fmt.Fprintf(w, "Good:\t%s\n", result.Best.TradeSymbol)
					fmt.Fprintf(w, "Destination:\t%s\n", result.Best.Destination)
					fmt.Fprintf(w, "Distance:\t%d\n", result.Best.Distance)
					fmt.Fprintf(w, "Spread:\t%d\n", result.Best.Spread)
					fmt.Fprintf(w, "Ratio:\t%.2f\n", result.Best.Ratio)
				})
			})
		},
	}

	cmd.Flags().StringVar(&waypointSymbol, "waypoint", "", "Market waypoint symbol (required)")

	return cmd
}

// newTradePairsCommand creates the trade pairs subcommand
func newTradePairsCommand() *cobra.Command {
	var (
		systemSymbol   string
		profitableOnly bool
		limit          int
	)

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List export-import pairs of a system",
		Long: `List every (export, import) pair of the same good between two markets of
a system, ranked by efficiency.

Example:
  spacetraders trade pairs --system X1-GZ7 --profitable --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol, err := resolveSystem(systemSymbol)
			if err != nil {
				return err
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &tradingQuery.SystemTradePairsQuery{
					SystemSymbol:   symbol,
					ProfitableOnly: profitableOnly,
					Limit:          limit,
				})
				if err != nil {
					return fmt.Errorf("failed to list trade pairs: %w", err)
				}
				result := response.(*tradingQuery.SystemTradePairsResponse)

				if format == outputTable && len(result.Pairs) == 0 {
					fmt.Printf("No trade pairs found in %s.\n", symbol)
					return nil
				}
				return render(os.Stdout, format, result, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "GOOD\tFROM\tTO\tDISTANCE\tBUY\tSELL\tSPREAD\tEFFICIENCY")
					fmt.Fprintln(w, "----\t----\t--\t--------\t---\t----\t------\t----------")
					for _, p := range result.Pairs {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%.2f\n",
							p.TradeSymbol, p.From, p.To, p.Distance, p.PurchasePrice, p.SellPrice, p.Spread, p.Efficiency)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&systemSymbol, "system", "", "System symbol (default: configured system)")
	cmd.Flags().BoolVar(&profitableOnly, "profitable", false, "Only pairs with a positive spread")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of pairs (0 = all)")

	return cmd
}

// newTradeRoutesCommand creates the trade routes subcommand
func newTradeRoutesCommand() *cobra.Command {
	var (
		systemSymbol string
		start        string
		slack        int
		maxDepth     int
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Search multi-hop trade routes from a market",
		Long: `Search simple paths through the system's market graph starting at a
market. Every hop carries one profitable good. Routes up to --slack hops
longer than the shortest profitable route are kept, ranked by total profit.

Examples:
  spacetraders trade routes --system X1-GZ7 --start X1-GZ7-A1
  spacetraders trade routes --system X1-GZ7 --start X1-GZ7-A1 --slack 0 --output yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" {
				return fmt.Errorf("--start flag is required")
			}
			symbol, err := resolveSystem(systemSymbol)
			if err != nil {
				return err
			}
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			query := &tradingQuery.TradeRoutesQuery{
				SystemSymbol: symbol,
				Start:        start,
				MaxDepth:     maxDepth,
				Limit:        limit,
			}
			if cmd.Flags().Changed("slack") {
				query.LengthSlack = &slack
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, query)
				if err != nil {
					return fmt.Errorf("failed to search trade routes: %w", err)
				}
				result := response.(*tradingQuery.TradeRoutesResponse)

				if format == outputTable && len(result.Routes) == 0 {
					fmt.Printf("No profitable routes from %s.\n", start)
					return nil
				}
				return render(os.Stdout, format, result, func(w *tabwriter.Writer) {
					for i, route := range result.Routes {
						fmt.Fprintf(w, "%d. %s\n", i+1, route.String())
						fmt.Fprintf(w, "   Profit:\t%d\tDistance:\t%d\n", route.TotalProfit, route.TotalDistance)
						for _, hop := range route.Hops {
							fmt.Fprintf(w, "   %s -> %s\t%s\t+%d\t(%d)\n", hop.From, hop.To, hop.TradeSymbol, hop.Profit, hop.Distance)
						}
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&systemSymbol, "system", "", "System symbol (default: configured system)")
	cmd.Flags().StringVar(&start, "start", "", "Starting market waypoint (required)")
	cmd.Flags().IntVar(&slack, "slack", 2, "Extra hops allowed beyond the shortest profitable route")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Hop limit (default: configured)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of routes (0 = all)")

	return cmd
}
