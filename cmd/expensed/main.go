package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"expensed/internal/cli"
	"expensed/internal/events"
	"expensed/internal/services"
	"expensed/internal/taxonomy"
	"expensed/internal/tools"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	logger.Info("Starting expensed")

	cfg := cli.LoadAndValidateConfig(logger)

	// Migrations run here; any schema failure is fatal to startup.
	store := cli.InitStore(logger, cfg.SQLiteDBPath)

	// AMQP events are optional: without a broker the tools still work, the
	// mutation event stream is simply absent.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP events",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	service := services.NewExpenseService(store, publisher)
	defer service.Close()

	mcpServer := server.NewMCPServer("ExpenseTracker", "1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	tools.Register(mcpServer, service, taxonomy.NewReader(cfg.CategoriesPath))

	httpServer := server.NewStreamableHTTPServer(mcpServer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Tool server listening", "addr", cfg.Addr())
		if err := httpServer.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err, "addr", cfg.Addr())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
