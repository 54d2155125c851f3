package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"bizdash/internal/amqp"
	"bizdash/internal/cli"
	applog "bizdash/internal/log"
	"bizdash/internal/services"
	"bizdash/internal/source/google"
	"bizdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, cfgErr := cli.LoadConfig()
	level := os.Getenv("LOG_LEVEL")
	if cfg != nil {
		level = cfg.LogLevel
	}
	logger := cli.SetupLogger(level, applog.ComponentWorker)
	if cfgErr != nil {
		logger.Error("Configuration validation failed", applog.FieldError, cfgErr)
		os.Exit(1)
	}
	if err := cfg.ValidateSyncTarget(); err != nil {
		logger.Error("Sync target configuration invalid", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting dashboard-worker", applog.FieldOperation, applog.OpStartup)

	ctx, stop := cli.SignalContext()
	defer stop()

	// Initialize SQLite repository to read pending summaries
	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	sheetsClient, err := google.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(sqliteRepo, sheetsClient, cfg.SyncBatchSize)
	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
	})

	g, gctx := errgroup.WithContext(ctx)

	// Messages published by the dashboard on every new summary.
	g.Go(func() error {
		return amqpClient.ConsumeSummarySync(gctx, syncWorker.HandleSyncMessage)
	})

	// Periodic sweep for rows whose message was lost. The first sweep runs
	// immediately and covers anything left from a previous run.
	g.Go(func() error {
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return processor.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
