package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3tea/fixture-sentinel/config"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SYNC_TAG", "")
}

func TestLoadFromTOML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.toml", `
app_name = "test-sentinel"
log_level = "debug"

[subscriber]
enabled = true
url = "redis://broker:6379/1"
channels = ["fixture_updates", "team_updates"]

[calendar]
sync_tag = "test-tag"
retention_days = 14
`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-sentinel", cfg.AppName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis://broker:6379/1", cfg.Subscriber.URL)
	assert.Equal(t, []string{"fixture_updates", "team_updates"}, cfg.Subscriber.Channels)
	assert.Equal(t, "test-tag", cfg.Calendar.SyncTag)
	assert.Equal(t, 14, cfg.Calendar.RetentionDays)

	// Untouched settings keep their defaults.
	assert.Equal(t, 5, cfg.Subscriber.ConnectTimeoutSecs)
	assert.Equal(t, "memory", cfg.Calendar.Provider)
	assert.Equal(t, []string{"console"}, cfg.Sink.Types)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromJSON(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{
		"app_name": "json-sentinel",
		"subscriber": {"enabled": false}
	}`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "json-sentinel", cfg.AppName)
	assert.False(t, cfg.Subscriber.Enabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Subscriber.URL)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.yaml", "app_name: nope\n")
	_, err := config.LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_URL", "redis://elsewhere:6380/0")
	t.Setenv("SYNC_TAG", "env-tag")

	path := writeConfig(t, "config.toml", `
[subscriber]
url = "redis://file:6379/0"
`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://elsewhere:6380/0", cfg.Subscriber.URL)
	assert.Equal(t, "env-tag", cfg.Calendar.SyncTag)
}

func TestValidateRejectsBadLevel(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.toml", `log_level = "verbose"`)
	_, err := config.LoadFromFile(path)
	require.Error(t, err)
}

func TestValidateRequiresBrokerURL(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.toml", `
[subscriber]
enabled = true
url = ""
`)
	_, err := config.LoadFromFile(path)
	require.Error(t, err)
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := config.DefaultConfig
	require.NoError(t, cfg.Validate())
}
