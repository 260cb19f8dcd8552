package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	socketPath   string
	configPath   string
	outputFormat string
	verbose      bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spacetraders",
		Short: "SpaceTraders CLI - cache, trade routes and ship automation",
		Long: `SpaceTraders CLI talks to the SpaceTraders API through a local cache.

One-shot commands (sync, market, trade, ship) run in-process against the
cache database. Long-running behaviors are owned by the daemon and
controlled over its Unix socket.

Examples:
  spacetraders sync all
  spacetraders market get --waypoint X1-GZ7-A1
  spacetraders trade routes --system X1-GZ7 --start X1-GZ7-A1 --output yaml
  spacetraders ship navigate --ship AGENT-1 --destination X1-GZ7-B1
  spacetraders daemon run
  spacetraders behavior start --ship AGENT-1 --behavior TRADE`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"Output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewAgentCommand())
	rootCmd.AddCommand(NewShipCommand())
	rootCmd.AddCommand(NewMarketCommand())
	rootCmd.AddCommand(NewTradeCommand())
	rootCmd.AddCommand(NewContractCommand())
	rootCmd.AddCommand(NewShipyardCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewBehaviorCommand())
	rootCmd.AddCommand(NewDaemonCommand())
	rootCmd.AddCommand(NewHealthCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("SPACETRADERS_SOCKET"); path != "" {
		return path
	}
	return "/tmp/spacetraders-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
