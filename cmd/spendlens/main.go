package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"spendlens/internal/cache"
	"spendlens/internal/cli"
	apphttp "spendlens/internal/http"
	"spendlens/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	ledger, err := cli.OpenLedger(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register("query", ledger.QueryCache())
	cacheManager.StartCleanup(5 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, ledger.LedgerService, ledger.Backend.Ping, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		cacheManager.Stop()
		return errors.Join(err, ledger.Close())
	})

	logger.Info("Starting spendlens server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Location().String(),
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
