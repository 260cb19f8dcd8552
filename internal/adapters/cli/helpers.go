package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

// commandTimeout bounds one-shot commands; the rate limiter alone can
// hold a full system sync for minutes
const commandTimeout = 10 * time.Minute

// resolveShip returns the --ship flag or the configured default ship
func resolveShip(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	userCfg, err := loadUserConfig()
	if err != nil {
		return "", fmt.Errorf("no ship specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultShip != "" {
		return userCfg.DefaultShip, nil
	}
	return "", fmt.Errorf("no ship specified: use --ship, or set a default with 'spacetraders config set-ship'")
}

// resolveSystem returns the --system flag or the configured default system
func resolveSystem(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	userCfg, err := loadUserConfig()
	if err != nil {
		return "", fmt.Errorf("no system specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultSystem != "" {
		return userCfg.DefaultSystem, nil
	}
	return "", fmt.Errorf("no system specified: use --system, or set a default with 'spacetraders config set-system'")
}

func loadUserConfig() (*config.UserConfig, error) {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return nil, err
	}
	return handler.Load()
}

// withApp bootstraps the app, runs fn under a bounded context, and closes the app
func withApp(fn func(ctx context.Context, app *App) error) error {
	app, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(app.Context(context.Background()), commandTimeout)
	defer cancel()
	return fn(ctx, app)
}

// intPtr returns nil for a non-positive flag value
func intPtr(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}
