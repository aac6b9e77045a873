package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"inkpress-backend/internal/cache"
	"inkpress-backend/internal/config"
	"inkpress-backend/internal/di"
	"inkpress-backend/internal/jobs"
	"inkpress-backend/internal/observability"
	"inkpress-backend/internal/repository/memory"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "inkpress-api",
		Environment: cfg.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// The in-memory store backs all repository ports until a database
	// deployment swaps it out. Warm jobs have no external worker here,
	// so the enqueuer reports dispatches and returns.
	store := memory.NewContentStore()
	enqueuer := jobs.EnqueuerFunc(func(ctx context.Context, job jobs.WarmJob) error {
		logger.Info("Warm job dispatched",
			zap.Strings("reasons", job.Reasons),
			zap.Time("requested_at", job.RequestedAt),
		)
		return nil
	})

	container := di.InitializeContainer(
		cfg,
		logger,
		tp.Tracer(),
		store,
		store.Pages(),
		store.Settings(),
		store.APIKeys(),
		enqueuer,
	)

	// Reload configuration on file change when a config file is in use.
	// The cache toggles are the knobs worth flipping without a restart:
	// turning a misbehaving layer off is the first move in an incident.
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		watcher, err := config.NewWatcher(path, cfg, logger)
		if err != nil {
			logger.Warn("Config watcher disabled", zap.Error(err))
		} else {
			watcher.Subscribe(func(next *config.Config) {
				container.L0.SetEnabled(next.Cache.EnableL0)
				container.L1.SetEnabled(next.Cache.EnableL1)
			})
			go watcher.Run(ctx)
		}
	}

	// Start the event consumer loop.
	go container.Consumer.Run(ctx)

	// Prime the warm pipeline once the process is up.
	container.Queue.Publish(cache.WarmupOnStartup())
	container.Consumer.Kick()

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      container.Router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	cancel()
	container.Trigger.Close()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown error", zap.Error(err))
	}
	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
