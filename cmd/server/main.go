package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tracerail/task-bridge/internal/config"
	"github.com/tracerail/task-bridge/internal/engine"
	httpserver "github.com/tracerail/task-bridge/internal/interfaces/http"
	"github.com/tracerail/task-bridge/internal/service"
	"github.com/tracerail/task-bridge/pkg/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TraceRail Task Bridge",
		zap.String("version", "3.1.0"),
		zap.Int("port", cfg.Server.Port))

	// Establish the engine connection handle: created once here, shared by
	// every request, closed exactly once on shutdown. Testing mode skips the
	// connection so all case operations fail fast as unavailable.
	var engineClient engine.Client
	if cfg.Temporal.TestingMode {
		logger.Info("Running in testing mode, skipping Temporal connection")
		engineClient = engine.NewDisabled()
	} else {
		temporalClient, err := engine.Dial(engine.Config{
			Target:       cfg.Temporal.Target(),
			Namespace:    cfg.Temporal.Namespace,
			WorkflowType: cfg.Cases.WorkflowType,
			CallTimeout:  cfg.Temporal.CallTimeout,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Temporal", zap.Error(err))
		}
		engineClient = temporalClient
	}
	defer engineClient.Close()

	// Wire the case service and HTTP surface
	caseService := service.NewCaseService(engineClient, cfg.Cases, logger)
	server := httpserver.NewServer(cfg, caseService, engineClient, logger)

	// Run until interrupted, then drain the HTTP server before the engine
	// handle is closed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
