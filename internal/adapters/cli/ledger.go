package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ledgerQuery "github.com/ropable/spacetraders-api/internal/application/ledger/queries"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Trading history and profit",
		Long: `View a ship's market transactions and the profit they add up to.

Transactions are recorded from every purchase and sale the ship makes and
from the transaction history of synced markets.

Examples:
  spacetraders ledger list --ship AGENT-1 --limit 20
  spacetraders ledger profit-loss --ship AGENT-1`,
	}

	cmd.AddCommand(newLedgerListCommand())
	cmd.AddCommand(newLedgerProfitLossCommand())

	return cmd
}

func newLedgerListCommand() *cobra.Command {
	var (
		shipSymbol string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a ship's recent transactions, newest first",
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
				response, err := app.Mediator.Send(ctx, &ledgerQuery.GetTransactionsQuery{ShipSymbol: symbol, Limit: limit})
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}
				result := response.(*ledgerQuery.GetTransactionsResponse)

				if format == outputTable && len(result.Transactions) == 0 {
					fmt.Printf("No transactions found for %s.\n", symbol)
					return nil
				}
				return render(os.Stdout, format, result, func(w *tabwriter.Writer) {
					fmt.Fprintln(w, "TIME\tWAYPOINT\tTYPE\tGOOD\tUNITS\tPRICE\tTOTAL")
					fmt.Fprintln(w, "----\t--------\t----\t----\t-----\t-----\t-----")
					for _, tx := range result.Transactions {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
							tx.Timestamp, tx.WaypointSymbol, tx.Type, tx.TradeSymbol, tx.Units, tx.PricePerUnit, tx.TotalPrice)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().IntVar(&limit, "limit", ledgerQuery.DefaultTransactionLimit, "Maximum number of transactions")

	return cmd
}

func newLedgerProfitLossCommand() *cobra.Command {
	var (
		shipSymbol string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "profit-loss",
		Short: "Sum revenue and expenses over a ship's recent transactions",
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
				response, err := app.Mediator.Send(ctx, &ledgerQuery.GetProfitLossQuery{ShipSymbol: symbol, Limit: limit})
				if err != nil {
					return fmt.Errorf("failed to compute profit and loss: %w", err)
				}
				result := response.(*ledgerQuery.GetProfitLossResponse)

				return render(os.Stdout, format, result, func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "Profit & Loss for %s (%d transactions)\n\n", result.ShipSymbol, result.Transactions)
					fmt.Fprintln(w, "GOOD\tREVENUE\tEXPENSES\tNET")
					fmt.Fprintln(w, "----\t-------\t--------\t---")
					for _, g := range result.ByGood {
						fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", g.TradeSymbol, g.Revenue, g.Expenses, g.Net)
					}
					fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\n", result.TotalRevenue, result.TotalExpenses, result.NetProfit)
				})
			})
		},
	}

	cmd.Flags().StringVar(&shipSymbol, "ship", "", "Ship symbol (default: configured ship)")
	cmd.Flags().IntVar(&limit, "limit", ledgerQuery.DefaultTransactionLimit, "Number of most recent transactions to include")

	return cmd
}
