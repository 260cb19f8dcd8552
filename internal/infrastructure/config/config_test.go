package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("API_TOKEN", "")
	t.Setenv("ST_API_TOKEN", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.LoadConfig(writeConfig(t, "logging:\n  level: debug\n"))

	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "spacetraders.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.API.RateLimit.Requests)
	assert.Equal(t, 60*time.Second, cfg.API.RateLimit.Period)
	assert.Equal(t, 2, cfg.API.RateLimit.Burst)
	assert.Equal(t, 10, cfg.Behavior.RandomExportCandidates)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Daemon.MetricsEnabled)

	_, err = cfg.RequireToken()
	assert.ErrorIs(t, err, config.ErrMissingToken)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ST_API_TOKEN", "")
	t.Setenv("API_TOKEN", "plain-token")
	t.Setenv("DATABASE_URL", "postgresql://st:st@db:5432/st")
	t.Setenv("ST_BEHAVIOR_MAX_ROUTE_DEPTH", "4")

	cfg, err := config.LoadConfig(writeConfig(t, "api:\n  timeout: 10s\n"))

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgresql://st:st@db:5432/st", cfg.Database.URL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4, cfg.Behavior.MaxRouteDepth)

	token, err := cfg.RequireToken()
	require.NoError(t, err)
	assert.Equal(t, "plain-token", token)
}

func TestLoadConfig_PrefixedTokenWins(t *testing.T) {
	t.Setenv("API_TOKEN", "plain-token")
	t.Setenv("ST_API_TOKEN", "prefixed-token")
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.LoadConfig(writeConfig(t, "{}\n"))

	require.NoError(t, err)
	assert.Equal(t, "prefixed-token", cfg.API.Token)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.LoadConfig(writeConfig(t, "logging:\n  level: chatty\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Level")
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	h, err := config.NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "nested", "config.json"))
	require.NoError(t, err)

	empty, err := h.Load()
	require.NoError(t, err)
	assert.Empty(t, empty.DefaultShip)

	require.NoError(t, h.Update(func(c *config.UserConfig) {
		c.DefaultShip = "AGENT-1"
		c.Output = "yaml"
	}))

	loaded, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, "AGENT-1", loaded.DefaultShip)
	assert.Equal(t, "yaml", loaded.Output)
}

func TestLoadConfig_RejectsBurstAboveRequests(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.LoadConfig(writeConfig(t, "api:\n  rate_limit:\n    requests: 2\n    burst: 5\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Burst")
}

func TestValidateConfig_RequiresDatabaseLocation(t *testing.T) {
	cfg := &config.Config{}
	config.SetDefaults(cfg)
	require.NoError(t, config.ValidateConfig(cfg))

	cfg.Database.Path = ""
	err := config.ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite_path")

	cfg.Database = config.DatabaseConfig{Type: "postgres", Pool: cfg.Database.Pool}
	err = config.ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres_dsn")
}
