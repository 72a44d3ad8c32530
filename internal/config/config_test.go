package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LEDGERBOT_TELEGRAM_TOKEN", "123:token")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "123:token", cfg.TelegramToken)
	assert.Equal(t, "ledgerbot.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.PollTimeout)
	assert.Equal(t, ":8080", cfg.OpsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingTokenFails(t *testing.T) {
	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram token")
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("LEDGERBOT_TELEGRAM_TOKEN", "123:token")

	dir := t.TempDir()
	content := "database_path = \"/var/lib/ledgerbot.db\"\nlog_level = \"debug\"\npoll_timeout = \"45s\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	v := viper.New()
	v.AddConfigPath(dir)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/ledgerbot.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.PollTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("LEDGERBOT_TELEGRAM_TOKEN", "123:token")
	t.Setenv("LEDGERBOT_LOG_LEVEL", "warn")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("log_level = \"debug\"\n"), 0o600))

	v := viper.New()
	v.AddConfigPath(dir)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
