package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"housebudget/internal/cli"
	apphttp "housebudget/internal/http"
	applog "housebudget/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger, err := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	if err != nil {
		logger.Warn("Falling back to info logging", applog.FieldError, err.Error())
	}

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		os.Exit(1)
	}

	svc, err := cli.InitLedgerService(context.Background(), logger, cfg, cli.ServiceOptions{
		Queue:      true,
		Extraction: true,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger", applog.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.WithLogger(logger))
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close ledger", applog.FieldError, err.Error())
		}
	})

	logger.Info("Starting housebudget server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"queue", svc.QueueEnabled(),
		"extraction", cfg.ExtractionEnabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		_ = svc.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
