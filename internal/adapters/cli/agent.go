package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ropable/spacetraders-api/internal/adapters/api"
	playerQuery "github.com/ropable/spacetraders-api/internal/application/player/queries"
	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

// NewAgentCommand creates the agent command with subcommands
func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Show the agent behind the configured token",
		Long: `Show the agent: credits, headquarters, faction and ship count.

The agent symbol is read from the token itself, so the cached agent is
shown without a request. Use --refresh to fetch it from the API.

Examples:
  spacetraders agent info
  spacetraders agent info --refresh
  spacetraders agent token`,
	}

	cmd.AddCommand(newAgentInfoCommand())
	cmd.AddCommand(newAgentTokenCommand())

	return cmd
}

func newAgentInfoCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show agent details",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat()
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, app *App) error {
				query := &playerQuery.GetAgentQuery{Refresh: refresh}
				if info, err := api.InspectToken(app.Config.API.Token); err == nil {
					query.AgentSymbol = info.AgentSymbol
				}

				response, err := app.Mediator.Send(ctx, query)
				if err != nil {
					return fmt.Errorf("failed to get agent: %w", err)
				}
				result := response.(*playerQuery.GetAgentResponse)
				v := newAgentView(result.Agent, result.Cached)

				return render(os.Stdout, format, v, func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "Agent:\t%s\n", v.Symbol)
					fmt.Fprintf(w, "Headquarters:\t%s\n", v.Headquarters)
					fmt.Fprintf(w, "Faction:\t%s\n", v.Faction)
					fmt.Fprintf(w, "Credits:\t%d\n", v.Credits)
					fmt.Fprintf(w, "Ships:\t%d\n", v.ShipCount)
					if v.Cached {
						fmt.Fprintln(w, "Source:\tcache")
					} else {
						fmt.Fprintln(w, "Source:\tAPI")
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the agent from the API")

	return cmd
}

func newAgentTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Decode the configured token without a network call",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			token, err := cfg.RequireToken()
			if err != nil {
				return err
			}
			info, err := api.InspectToken(token)
			if err != nil {
				return err
			}

			fmt.Printf("Agent:       %s\n", info.AgentSymbol)
			fmt.Printf("Version:     %s\n", info.Version)
			fmt.Printf("Reset Date:  %s\n", info.ResetDate)
			if info.IssuedAt != nil {
				fmt.Printf("Issued At:   %s\n", info.IssuedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
