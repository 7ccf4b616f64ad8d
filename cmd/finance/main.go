package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finance/internal/cli"
	apphttp "finance/internal/http"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	res, err := cli.InitBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, res.Service, apphttp.Options{
		DefaultCategory: cfg.ImportDefaultCategory,
		StrictDates:     cfg.ImportStrictDates,
		DayFirst:        cfg.ImportDayFirst,
		PreviewLimit:    cfg.ImportPreviewLimit,
	})

	// Imports can be large; writes get more room than reads.
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting finance server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
