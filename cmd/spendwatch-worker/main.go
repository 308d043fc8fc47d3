package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spendwatch/internal/amqp"
	"spendwatch/internal/cli"
	"spendwatch/internal/ledger"
	gledger "spendwatch/internal/ledger/google"
	memledger "spendwatch/internal/ledger/memory"
	"spendwatch/internal/notify"
	"spendwatch/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting spendwatch-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Ledger mirror is optional; purchases that cannot be mirrored are
	// requeued, so a missing backend must mean "skip", not "retry forever".
	var writer ledger.PurchaseWriter
	switch cfg.LedgerBackend {
	case "sheets":
		client, err := gledger.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Ledger backend initialized", "backend", cfg.LedgerBackend, "spreadsheet_id", cfg.LedgerSpreadsheetID)
	case "memory":
		writer = memledger.New()
		logger.Info("Ledger backend initialized", "backend", cfg.LedgerBackend)
	default:
		logger.Info("Ledger mirroring disabled")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	dispatcher := notify.NewDispatcher(notify.LogSink{})
	notifyWorker := worker.NewNotifyWorker(repo, writer, dispatcher)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runCfg := worker.RunConfig{
		BudgetCheckInterval: cfg.BudgetCheckInterval,
		SummaryHour:         cfg.SummaryHour,
	}

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"budget_check_interval", runCfg.BudgetCheckInterval.String(),
		"summary_hour", runCfg.SummaryHour)

	if err := notifyWorker.Run(ctx, amqpClient, runCfg); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
