package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"articleforge/internal/app"
	"articleforge/internal/config"
	"articleforge/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.RunBot(ctx); err != nil {
		logger.Error("automation run failed", "error", err)
		os.Exit(1)
	}
}
