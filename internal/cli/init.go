// Package cli holds the bootstrap shared by the spendlens binaries and the
// spendctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendlens/internal/backend"
	"spendlens/internal/cache"
	"spendlens/internal/config"
	"spendlens/internal/log"
	"spendlens/internal/services"
	"spendlens/internal/sheets/google"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger from cfg and installs it as
// the slog default.
func SetupLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, sets up logging from it and
// validates it. The process exits on validation failure.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg, logger
}

// Ledger is a LedgerService together with the backend it runs on.
type Ledger struct {
	*services.LedgerService
	Backend *backend.BackendResult
}

// Close releases the backend.
func (l *Ledger) Close() error {
	if l.Backend == nil || l.Backend.Cleanup == nil {
		return nil
	}
	return l.Backend.Cleanup()
}

// OpenLedger creates the configured backend and a LedgerService over it.
// The Google Sheets report exporter is attached when a spreadsheet is
// configured; failing to reach it is logged, not fatal.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Ledger, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	res, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	opts := []services.Option{
		services.WithLocation(cfg.Location()),
		services.WithCollation(cfg.Collation()),
		services.WithQueryCache(cache.NewLRUCache[services.QueryView](cfg.QueryCacheSize, cfg.QueryCacheTTL)),
		services.WithLogger(logger),
	}
	if res.Publisher != nil {
		opts = append(opts, services.WithPublisher(res.Publisher))
	}
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleAlertsSheet, cfg.GoogleReportSheet)
		if err != nil {
			logger.Warn("Google Sheets unavailable, budget report export disabled",
				log.FieldError, err.Error())
		} else {
			opts = append(opts, services.WithExporter(client))
		}
	}

	return &Ledger{
		LedgerService: services.NewLedgerService(res.Store, opts...),
		Backend:       res,
	}, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. Once
// the signal arrives, cleanup runs with a context bounded by timeout and
// done is closed when it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context) error) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			if err := cleanup(shutdownCtx); err != nil {
				logger.Error("Shutdown cleanup failed", log.FieldError, err.Error())
			}
		}
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup has run.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
