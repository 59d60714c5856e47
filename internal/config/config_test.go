package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "energymon.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENERGYMON_PORT", "")

	cfg, err := config.Load(nil)
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 600.0, cfg.PerLoadLimit)
	assert.Equal(t, 1200.0, cfg.TotalLimit)
	assert.Empty(t, cfg.WebDir)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "energymon/samples", cfg.MQTT.Topic)
	assert.Equal(t, "http://localhost:3000", cfg.Dashboard.BaseURL)
	assert.Equal(t, "energy-ui-v1", cfg.Dashboard.CacheName)
	assert.Equal(t, 2*time.Second, cfg.Dashboard.RequestTimeout)
	assert.False(t, cfg.Debug)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
port = 8080
web_dir = "/srv/energymon/web"
per_load_limit_mw = 500
total_limit_mw = 900
verbose = true

[mqtt]
enabled = true
broker = "tcp://broker:1883"
topic = "stm32/energy"

[dashboard]
base_url = "http://board.local:8080"
cache_db = "/var/lib/energymon/cache.db"
request_timeout = "750ms"
`)

	cfg, err := config.Load(nil, config.WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/srv/energymon/web", cfg.WebDir)
	assert.Equal(t, 500.0, cfg.PerLoadLimit)
	assert.Equal(t, 900.0, cfg.TotalLimit)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, "stm32/energy", cfg.MQTT.Topic)
	assert.Equal(t, "http://board.local:8080", cfg.Dashboard.BaseURL)
	assert.Equal(t, "/var/lib/energymon/cache.db", cfg.Dashboard.CacheDB)
	assert.Equal(t, 750*time.Millisecond, cfg.Dashboard.RequestTimeout)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
port = 8080
per_load_limit_mw = 500
`)

	cfg, err := config.Load([]string{"--config", path, "--port", "9090", "--debug"})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 500.0, cfg.PerLoadLimit)
	assert.True(t, cfg.Debug)
}

func TestEnvPort(t *testing.T) {
	t.Setenv("ENERGYMON_PORT", "4000")

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, `
This is not a valid TOML file
`)

	_, err := config.Load(nil, config.WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(nil, config.WithConfigFile(filepath.Join(t.TempDir(), "missing.toml")))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestUnknownFlag(t *testing.T) {
	_, err := config.Load([]string{"--no-such-flag"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrBindFlags))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero per-load limit", []string{"--per-load-limit", "0"}},
		{"negative total limit", []string{"--total-limit", "-1"}},
		{"port out of range", []string{"--port", "70000"}},
		{"empty cache name", []string{"--cache-name", ""}},
		{"mqtt without topic", []string{"--mqtt", "--mqtt-topic", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
		})
	}
}
