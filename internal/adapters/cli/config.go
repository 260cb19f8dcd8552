package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage SpaceTraders configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (ST_* prefix, plus API_TOKEN and DATABASE_URL)
2. Config file (config.yaml)
3. Default values

User preferences (default ship, system and output format) are stored in
~/.spacetraders/config.json

Examples:
  spacetraders config show
  spacetraders config set-ship AGENT-1
  spacetraders config set-system X1-GZ7
  spacetraders config set-output yaml
  spacetraders config clear`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand("set-ship", "Set the default ship", func(c *config.UserConfig, v string) error {
		c.DefaultShip = strings.ToUpper(v)
		return nil
	}))
	cmd.AddCommand(newConfigSetCommand("set-system", "Set the default system", func(c *config.UserConfig, v string) error {
		c.DefaultSystem = strings.ToUpper(v)
		return nil
	}))
	cmd.AddCommand(newConfigSetCommand("set-output", "Set the default output format (table, json, yaml)", func(c *config.UserConfig, v string) error {
		format, err := parseOutputFormat(v)
		if err != nil {
			return err
		}
		c.Output = format
		return nil
	}))
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Shows both system configuration and user preferences. The API token is
never printed.

Example:
  spacetraders config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load system config
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			// Load user config
			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			// Display configuration
			fmt.Println("SpaceTraders Configuration")
			fmt.Println("==========================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			fmt.Printf("  Default Ship:     %s\n", orNotSet(userCfg.DefaultShip))
			fmt.Printf("  Default System:   %s\n", orNotSet(userCfg.DefaultSystem))
			fmt.Printf("  Output Format:    %s\n", orNotSet(userCfg.Output))

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

			fmt.Println("\nSpaceTraders API:")
			fmt.Printf("  Base URL:         %s\n", cfg.API.BaseURL)
			if cfg.API.Token != "" {
				fmt.Printf("  Token:            (set)\n")
			} else {
				fmt.Printf("  Token:            (not set)\n")
			}
			fmt.Printf("  Timeout:          %s\n", cfg.API.Timeout)
			fmt.Printf("  Rate Limit:       %d req / %s (burst: %d)\n",
				cfg.API.RateLimit.Requests, cfg.API.RateLimit.Period, cfg.API.RateLimit.Burst)
			fmt.Printf("  Max Retries:      %d\n", cfg.API.Retry.MaxAttempts)

			fmt.Println("\nBehavior:")
			fmt.Printf("  Arrival Buffer:   %s\n", cfg.Behavior.ArrivalBuffer)
			fmt.Printf("  Export Choices:   %d\n", cfg.Behavior.RandomExportCandidates)
			fmt.Printf("  Route Slack:      %d\n", cfg.Behavior.RouteLengthSlack)
			fmt.Printf("  Max Route Depth:  %d\n", cfg.Behavior.MaxRouteDepth)

			fmt.Println("\nDaemon:")
			fmt.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  PID File:         %s\n", cfg.Daemon.PIDFile)
			if cfg.Daemon.MetricsEnabled {
				fmt.Printf("  Metrics:          http://%s/metrics\n", cfg.Daemon.MetricsAddr)
			} else {
				fmt.Printf("  Metrics:          disabled\n")
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// newConfigSetCommand creates a subcommand storing one user preference
func newConfigSetCommand(use, short string, apply func(*config.UserConfig, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			var applyErr error
			if err := handler.Update(func(c *config.UserConfig) {
				applyErr = apply(c, args[0])
			}); err != nil {
				return fmt.Errorf("failed to save user config: %w", err)
			}
			if applyErr != nil {
				return applyErr
			}

			fmt.Printf("✓ Saved to %s\n", handler.GetConfigPath())
			return nil
		},
	}
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear every user preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.Save(&config.UserConfig{}); err != nil {
				return fmt.Errorf("failed to save user config: %w", err)
			}
			fmt.Println("✓ User preferences cleared")
			return nil
		},
	}
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// maskPassword masks the password of a connection URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
