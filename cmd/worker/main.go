package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dompet/internal/config"
	"dompet/internal/database"
	"dompet/internal/events"
	"dompet/internal/logger"
	"dompet/internal/services"
	"dompet/internal/worker"
)

// prefetch bounds the unacknowledged events held by the worker.
const prefetch = 10

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Worker error: %v", err)
	}
}

func run() error {
	log := logger.Get()
	log.Info("Starting dompet-worker")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required by the worker")
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("failed to initialize AMQP client: %w", err)
	}
	defer client.Close()

	budgetWorker := worker.NewBudgetWorker(services.NewBudgetService(dbManager.DB()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = client.Consume(ctx, prefetch, budgetWorker.HandleTransactionEvent)
	if errors.Is(err, context.Canceled) {
		log.Info("Shutdown signal received, worker stopped")
		return nil
	}
	return err
}
