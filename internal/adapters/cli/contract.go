package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	contractQuery "github.com/ropable/spacetraders-api/internal/application/contract/queries"
)

// NewContractCommand creates the contract command with subcommands
func NewContractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "View cached contracts",
		Long: `View faction contracts from the cache.

Run 'spacetraders sync contracts' first to refresh them.

Examples:
  spacetraders contract list
  spacetraders contract list --active`,
	}

	cmd.AddCommand(newContractListCommand())

	return cmd
}

func newContractListCommand() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				response, err := app.Mediator.Send(ctx, &contractQuery.ListContractsQuery{ActiveOnly: activeOnly})
				if err != nil {
					return fmt.Errorf("failed to list contracts: %w", err)
				}
				contracts := response.(*contractQuery.ListContractsResponse).Contracts

				views := make([]contractView, 0, len(contracts))
				for _, c := range contracts {
					views = append(views, newContractView(c))
				}
				if format == outputTable && len(views) == 0 {
					fmt.Println("No contracts found.")
					return nil
				}
				return render(os.Stdout, format, views, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "ID\tFACTION\tTYPE\tSTATUS\tPAYMENT\tDELIVER")
					fmt.Fprintln(w, "--\t-------\t----\t------\t-------\t-------")
					for _, v := range views {
						status := "OPEN"
						switch {
						case v.Fulfilled:
							status = "FULFILLED"
						case v.Accepted:
							status = "ACCEPTED"
						}
						deliver := ""
						for i, d := range v.Deliver {
							if i > 0 {
								deliver += ", "
							}
							deliver += fmt.Sprintf("%s %d/%d -> %s", d.TradeSymbol, d.Fulfilled, d.Required, d.Destination)
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d+%d\t%s\n",
							v.ID, v.Faction, v.Type, status, v.OnAccepted, v.OnFulfilled, deliver)
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only accepted, unfulfilled contracts")

	return cmd
}
