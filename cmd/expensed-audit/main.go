package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"expensed/internal/audit"
	"expensed/internal/cli"
	"expensed/internal/events"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	logger.Info("Starting expensed-audit")

	cfg := cli.LoadAndValidateConfig(logger)

	// Unlike the tool server, the audit worker exists only to drain the event
	// queue, so a broker is mandatory here.
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	writer, err := audit.NewWriter(cfg.AuditLogPath)
	if err != nil {
		logger.Error("Failed to open audit log", "error", err, "path", cfg.AuditLogPath)
		os.Exit(1)
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming expense events",
		"queue", cfg.AMQPQueue,
		"audit_log", cfg.AuditLogPath)

	if err := client.ConsumeExpenseEvents(ctx, writer.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Audit worker stopped gracefully")
}
