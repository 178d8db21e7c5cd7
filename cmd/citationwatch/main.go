package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"CitationWatch/internal/app"
	"CitationWatch/internal/config"
	"CitationWatch/internal/logging"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "run the full pipeline without dispatching or marking alerts notified")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger, *dryRun)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		_ = application.Close()
		os.Exit(1)
	}

	if err := application.Close(); err != nil {
		logger.Error("close alert store", "error", err)
	}
}
