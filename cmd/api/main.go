package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haugen-io/outbind/internal/config"
	"github.com/haugen-io/outbind/internal/database"
	"github.com/haugen-io/outbind/internal/http/handler"
	"github.com/haugen-io/outbind/internal/http/middleware"
	"github.com/haugen-io/outbind/internal/http/router"
	"github.com/haugen-io/outbind/internal/jobs"
	"github.com/haugen-io/outbind/internal/logger"
	"github.com/haugen-io/outbind/internal/queue"
	"github.com/haugen-io/outbind/internal/repository"
	"github.com/haugen-io/outbind/internal/service"
	"go.uber.org/zap"
)

// @title outbind API
// @version 1.0
// @description HTTP trigger service with Storage Queue and Azure SQL output bindings

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Full configuration with secrets.
	// Development: environment variables. Staging/production with
	// USE_AZURE_KEY_VAULT=true: Azure Key Vault.
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to Azure SQL with retry (serverless resume can be slow)
	db, err := database.NewDatabase(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Queue output binding sink
	sink, err := queue.NewSink(&cfg.Queue, log)
	if err != nil {
		return fmt.Errorf("failed to initialize queue sink: %w", err)
	}
	log.Info("Queue sink initialized",
		zap.String("mode", cfg.Queue.Mode),
		zap.String("queue", cfg.Queue.Name),
	)

	// Repositories
	todoRepo := repository.NewTodoRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Services
	outboxService := service.NewOutboxService(outboxRepo, sink, cfg.Outbox.BatchSize, log)
	triggerService := service.NewTriggerService(todoRepo, outboxRepo, outboxService, cfg.Queue.Name, log, db)
	todoService := service.NewTodoService(todoRepo, log)

	// Middleware
	authMiddleware := middleware.NewFunctionKeyAuth(&cfg.Auth, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	triggerHandler := handler.NewTriggerHandler(triggerService, log)
	todoHandler := handler.NewTodoHandler(todoService, log)

	// Router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		sink,
		authMiddleware,
		rateLimiter,
		triggerHandler,
		todoHandler,
	)

	// Outbox sweep re-sends whatever immediate dispatch missed
	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterOutboxSweepJob(
		scheduler,
		outboxService,
		log,
		cfg.Outbox.SweepCron,
		cfg.Outbox.DispatchTimeoutDuration(),
	); err != nil {
		return fmt.Errorf("failed to register outbox sweep job: %w", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Flush anything still staged before exit
		if n, err := outboxService.DispatchPending(ctx); err != nil {
			log.Warn("Final outbox dispatch incomplete", zap.Int("dispatched", n), zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
