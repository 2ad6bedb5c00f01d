package main

import (
	"context"
	"os"

	"articleforge/internal/app"
	"articleforge/internal/config"
	"articleforge/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.RunCrawl(ctx); err != nil {
		logger.Error("crawl failed", "error", err)
		os.Exit(1)
	}
}
