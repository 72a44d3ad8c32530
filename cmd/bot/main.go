package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dvloznov/ledgerbot/internal/bot"
	"github.com/dvloznov/ledgerbot/internal/config"
	"github.com/dvloznov/ledgerbot/internal/firefly"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/ops"
	"github.com/dvloznov/ledgerbot/internal/session/sqlite"
	"github.com/dvloznov/ledgerbot/internal/telegram"
)

// version is set at build time with -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerbot",
		Short:        "Telegram bot that records chat messages as Firefly III transactions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	})

	return root
}

func run(ctx context.Context) error {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return err
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	gateway := firefly.NewClient(cfg.RequestTimeout, log)
	handler := bot.New(store, gateway, log)

	transport, err := telegram.New(cfg.TelegramToken, handler, cfg.PollTimeout, log)
	if err != nil {
		return err
	}

	opsServer := ops.NewServer(cfg.OpsAddr, store, log)
	go func() {
		if err := opsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Operational server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("version", version).
		Str("database", cfg.DatabasePath).
		Msg("Starting ledgerbot")

	runErr := transport.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Operational server shutdown failed")
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
