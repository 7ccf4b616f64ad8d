package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"finance/internal/cli"
	"finance/internal/sheets"
	gsheet "finance/internal/sheets/google"
	mem "finance/internal/sheets/memory"
	"finance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting finance-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		logger.Warn("Worker reads its own store; only the sqlite backend shares data with the server",
			"backend", cfg.DataBackend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	}()
	if res.Events == nil {
		logger.Error("AMQP client unavailable, cannot consume events")
		os.Exit(1)
	}

	var mirror sheets.TransactionMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleImportRange)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		mirror = mem.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring to memory only")
	}

	mw := worker.NewMirrorWorker(res.Store, mirror)

	// A missed event between restarts is repaired by the full rewrite.
	if err := mw.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return res.Events.ConsumeWithRetry(gctx, mw.HandleEvent)
	})
	g.Go(func() error {
		return mw.RunPeriodicResync(gctx, cfg.ResyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		stop()
		_ = res.Cleanup()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
