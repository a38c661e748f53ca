package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bluepay/internal/amqp"
	"bluepay/internal/config"
	"bluepay/internal/export/google"
	applog "bluepay/internal/log"
	"bluepay/internal/storage"
	"bluepay/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting bluepay-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the export worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sheetsClient, err := google.New(ctx, cfg.GoogleSpreadsheetID)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	if err := amqpClient.Qos(cfg.ExportBatchSize); err != nil {
		logger.Error("Failed to set AMQP prefetch", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(repo, sheetsClient)

	logger.Info("Consuming export jobs", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeExports(ctx, exportWorker.HandleExportMessage); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Export job consumption failed", "error", err)
			os.Exit(1)
		}
	}

	// ConsumeExports runs jobs on this goroutine, so once it returns the
	// in-flight job has already been settled and the process can exit.
	logger.Info("Worker shutdown complete")
}
