// Package main запускает сервис напоминаний и писем о визитах.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/app/notifier"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/config"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting visit-notifier", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := notifier.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize notifier", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("notifier stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("visit-notifier stopped gracefully")
}
