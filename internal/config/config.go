// Package config loads runtime settings from an optional config.toml and
// LEDGERBOT_-prefixed environment variables. Environment variables win.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the bot needs at startup. Per-user ledger
// credentials are not here; those live in each chat's session.
type Config struct {
	TelegramToken  string
	DatabasePath   string
	RequestTimeout time.Duration
	PollTimeout    time.Duration
	OpsAddr        string
	LogLevel       string
}

const envPrefix = "LEDGERBOT"

// Load reads settings into a Config. A missing config file is fine; a
// missing Telegram token is not.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(".")
	cfg.SetEnvPrefix(envPrefix)
	cfg.AutomaticEnv()

	cfg.SetDefault("database_path", "ledgerbot.db")
	cfg.SetDefault("request_timeout", 10*time.Second)
	cfg.SetDefault("poll_timeout", 30*time.Second)
	cfg.SetDefault("ops_addr", ":8080")
	cfg.SetDefault("log_level", "info")

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	c := Config{
		TelegramToken:  cfg.GetString("telegram_token"),
		DatabasePath:   cfg.GetString("database_path"),
		RequestTimeout: cfg.GetDuration("request_timeout"),
		PollTimeout:    cfg.GetDuration("poll_timeout"),
		OpsAddr:        cfg.GetString("ops_addr"),
		LogLevel:       cfg.GetString("log_level"),
	}

	if c.TelegramToken == "" {
		return Config{}, errors.New("telegram token is not set (telegram_token in config.toml or LEDGERBOT_TELEGRAM_TOKEN)")
	}

	return c, nil
}
