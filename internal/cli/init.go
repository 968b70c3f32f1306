// Package cli provides the initialization shared by cmd/housebudget,
// cmd/housebudget-worker and cmd/hbctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"housebudget/internal/amqp"
	"housebudget/internal/backend"
	"housebudget/internal/cache"
	"housebudget/internal/config"
	"housebudget/internal/extract"
	applog "housebudget/internal/log"
	"housebudget/internal/services"
	"housebudget/internal/sheets/google"
)

// SetupLogger builds the process logger from a LOG_LEVEL value and
// installs it as the slog default.
func SetupLogger(level string, out io.Writer) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{
		Level:     lvl,
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger, err
}

// LoadEnvFile loads .env style files for local development. Missing files
// are ignored since production passes real environment variables.
func LoadEnvFile(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig(logger *applog.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		return nil, err
	}
	return cfg, nil
}

// ServiceOptions selects the optional integrations InitLedgerService wires.
type ServiceOptions struct {
	// Queue connects the AMQP publisher when AMQP_URL is set.
	Queue bool
	// Extraction enables the synchronous assistant client when an API key is set.
	Extraction bool
}

// InitLedgerService opens the configured store and wires the optional
// publisher and extractor. Close on the returned service releases them all.
func InitLedgerService(ctx context.Context, logger *applog.Logger, cfg *config.Config, opts ServiceOptions) (*services.LedgerService, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	handle, err := backend.Open(ctx, bcfg, logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		return nil, err
	}

	svcOpts := []services.Option{
		services.WithThreshold(cfg.BucketThreshold),
		services.WithCloser(handle.Close),
	}

	if opts.Queue && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// The ledger stays usable; statement submission answers 503.
			logger.WithComponent(applog.ComponentAMQP).Warn("AMQP unavailable, statement queue disabled", applog.FieldError, err.Error())
		} else {
			logger.WithComponent(applog.ComponentAMQP).Info("AMQP publisher connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			svcOpts = append(svcOpts, services.WithPublisher(client), services.WithCloser(client.Close))
			svcOpts = append(svcOpts, submissionDedup(logger, cfg)...)
		}
	}

	if opts.Extraction && cfg.ExtractionEnabled() {
		svcOpts = append(svcOpts, services.WithExtractor(NewExtractor(cfg)))
		logger.WithComponent(applog.ComponentExtract).Info("Statement extraction enabled", "model", cfg.OpenAIModel)
	}

	return services.NewLedgerService(handle.Store, svcOpts...), nil
}

// submissionDedup remembers queued statements for DEDUP_TTL so a retried
// upload does not import the same rows twice.
func submissionDedup(logger *applog.Logger, cfg *config.Config) []services.Option {
	if cfg.DedupTTL <= 0 {
		return nil
	}
	submitted := cache.NewLRU[string](cfg.DedupSize, cfg.DedupTTL)
	janitor := cache.NewJanitor(logger.WithComponent(applog.ComponentCache).Logger, submitted)
	janitor.Start(cfg.DedupTTL)
	logger.WithComponent(applog.ComponentCache).Info("Statement dedup enabled", "ttl", cfg.DedupTTL.String(), "size", cfg.DedupSize)
	return []services.Option{services.WithSubmissionDedup(submitted), services.WithCloser(janitor.Stop)}
}

// NewExtractor builds the assistant client from configuration.
func NewExtractor(cfg *config.Config) *extract.Client {
	return extract.NewClient(cfg.OpenAIAPIKey,
		extract.WithBaseURL(cfg.OpenAIBaseURL),
		extract.WithModel(cfg.OpenAIModel),
		extract.WithMaxChars(cfg.ExtractMaxChars),
		extract.WithTimeout(cfg.ExtractTimeout))
}

// NewSheetsClient connects to the configured spreadsheet.
func NewSheetsClient(ctx context.Context, cfg *config.Config) (*google.Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, fmt.Errorf("google sheets: GOOGLE_SPREADSHEET_ID is not set")
	}
	return google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. After the
// signal, cleanup runs with a context bounded by timeout, then done closes.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
