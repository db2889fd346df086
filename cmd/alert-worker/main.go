package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendlens/internal/amqp"
	"spendlens/internal/cli"
	"spendlens/internal/log"
	"spendlens/internal/sheets/google"
	"spendlens/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentWorker)

	logger.Info("Starting alert-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	alertWorker := worker.NewAlertWorker(logger)
	alertWorker.Register("log", worker.NewLogNotifier(logger))

	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := google.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleAlertsSheet, cfg.GoogleReportSheet)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		alertWorker.Register("sheets", sheetsClient)
		logger.Info("Google Sheets notifier enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// The report reads budgets from the shared database, so it only runs
	// against sqlite. Raised alerts arrive over AMQP; no publisher is needed here.
	var ledger *cli.Ledger
	if cfg.ReportInterval > 0 && cfg.GoogleSpreadsheetID != "" && cfg.DataBackend == "sqlite" {
		reportCfg := *cfg
		reportCfg.AMQPURL = ""
		ledger, err = cli.OpenLedger(context.Background(), &reportCfg, logger)
		if err != nil {
			logger.Error("Failed to open ledger for reports", log.FieldError, err.Error())
			os.Exit(1)
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) error {
		err := amqpClient.Close()
		if ledger != nil {
			err = errors.Join(err, ledger.Close())
		}
		return err
	})

	if ledger != nil {
		go alertWorker.RunReports(ctx, cfg.ReportInterval, ledger.ExportReport)
		logger.Info("Scheduled budget report export", "interval", cfg.ReportInterval.String())
	}

	if err := amqpClient.ConsumeAlerts(ctx, alertWorker.HandleAlertMessage); err != nil && ctx.Err() == nil {
		logger.Error("Alert consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
