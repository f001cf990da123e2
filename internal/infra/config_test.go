package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.True(t, cfg.GRPC.Enabled)
	assert.Equal(t, 50052, cfg.GRPC.Port)
	assert.Equal(t, "https://api.github.com/advisories", cfg.Feed.URL)
	assert.Equal(t, 15, cfg.Feed.MaxRecords)
	assert.Equal(t, uint32(3), cfg.Feed.CBFailures)
	assert.Equal(t, time.Minute, cfg.Feed.RateInterval)
	assert.Equal(t, 60, cfg.Feed.RateBurst)
	assert.Equal(t, uint64(0), cfg.Generator.Seed)
	assert.Equal(t, 900, cfg.Render.Width)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
feed:
  timeout: 3s
generator:
  seed: 11
`), 0o600))
	t.Setenv("DASHBOARD_METRICS_PORT", "9191")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint64("seed", 0, "")
	require.NoError(t, flags.Parse([]string{"--seed=42"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
}

func TestLoadConfig_UnsetFlagKeepsFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("generator:\n  seed: 11\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint64("seed", 0, "")

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), cfg.Generator.Seed)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\nrender:\n  width: -1\n"), 0o600))
	_, err = LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "render")
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(LoggerConfig{Level: "debug", Format: format})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}

	_, err := NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LoggerConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
