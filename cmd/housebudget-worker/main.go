package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"housebudget/internal/amqp"
	"housebudget/internal/backend"
	"housebudget/internal/cli"
	applog "housebudget/internal/log"
	"housebudget/internal/worker"
)

const statsInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()

	logger, err := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	if err != nil {
		logger.Warn("Falling back to info logging", applog.FieldError, err.Error())
	}
	logger = logger.WithComponent(applog.ComponentWorker)
	logger.Info("Starting housebudget-worker")

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}
	if !cfg.ExtractionEnabled() {
		logger.Error("OPENAI_API_KEY is required by the worker")
		os.Exit(1)
	}
	if !backend.Kind(cfg.DataBackend).Persistent() {
		logger.Warn("Memory backend selected: extracted rows are not visible to the server process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := cli.InitLedgerService(ctx, logger, cfg, cli.ServiceOptions{Extraction: true})
	if err != nil {
		logger.Error("Failed to initialize ledger", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer svc.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	// The job deadline leaves room for storing rows after the assistant replies.
	w := worker.NewExtractionWorker(svc, cfg.ExtractTimeout+30*time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeExtractions(gctx, w.HandleExtraction)
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				processed, stored, dropped := w.Stats()
				logger.Info("Worker stats",
					"processed", processed,
					"stored", stored,
					"dropped", dropped,
					"amqp_healthy", client.Healthy())
			}
		}
	})

	err = g.Wait()
	processed, stored, dropped := w.Stats()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully",
		"processed", processed,
		"stored", stored,
		"dropped", dropped)
}
