package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/leowmjw/go-obs-query/pkg/engine"
	obshttp "github.com/leowmjw/go-obs-query/pkg/http"
	"github.com/leowmjw/go-obs-query/pkg/workflow"
)

func main() {
	var (
		httpAddr     = flag.String("http-addr", ":8080", "HTTP server address")
		temporalAddr = flag.String("temporal-addr", "", "Temporal server address; empty disables the batch worker")
		namespace    = flag.String("namespace", "default", "Temporal namespace")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	var logHandler slog.Handler
	switch *logLevel {
	case "debug":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case "warn":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})
	case "error":
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	default:
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("Starting observation query service",
		"http_addr", *httpAddr,
		"temporal_addr", *temporalAddr,
	)

	store := engine.NewStore()

	// The batch worker is optional; the HTTP API is fully functional
	// without a Temporal server.
	if *temporalAddr != "" {
		temporalClient, err := client.Dial(client.Options{
			HostPort:  *temporalAddr,
			Namespace: *namespace,
		})
		if err != nil {
			logger.Error("Failed to create Temporal client", "error", err)
			os.Exit(1)
		}
		defer temporalClient.Close()

		activities := workflow.NewActivities(logger, store)

		w := worker.New(temporalClient, workflow.TaskQueue, worker.Options{})
		w.RegisterWorkflow(workflow.BatchQueryWorkflow)
		w.RegisterActivity(activities.ExecuteQueryActivity)

		go func() {
			logger.Info("Starting Temporal worker", "task_queue", workflow.TaskQueue)
			if err := w.Run(worker.InterruptCh()); err != nil {
				logger.Error("Temporal worker failed", "error", err)
				os.Exit(1)
			}
		}()
	}

	server := obshttp.NewServer(logger, store, *httpAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(ctx); err != nil {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Received shutdown signal, stopping services...")

	cancel()

	logger.Info("Observation query service stopped")
}
