package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vyrodovalexey/navrouter/internal/cache"
	"github.com/vyrodovalexey/navrouter/internal/config"
	"github.com/vyrodovalexey/navrouter/internal/observability"
	"github.com/vyrodovalexey/navrouter/internal/server"
)

type serveOptions struct {
	*rootOptions

	address   string
	logLevel  string
	logFormat string
	watch     bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.address, "address", getEnvOrDefault("NAVROUTER_ADDRESS", ""),
		"Listen address, overrides server.address")
	fs.StringVar(&opts.logLevel, "log-level", getEnvOrDefault("NAVROUTER_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error), overrides observability.logging.level")
	fs.StringVar(&opts.logFormat, "log-format", getEnvOrDefault("NAVROUTER_LOG_FORMAT", ""),
		"Log format (json, console), overrides observability.logging.format")
	fs.BoolVar(&opts.watch, "watch", getEnvBool("NAVROUTER_WATCH", true),
		"Reload routes when the configuration file changes")
	return cmd
}

// application holds the serve components that need shutting down.
type application struct {
	server  *server.Server
	store   cache.Cache
	tracer  *observability.Tracer
	watcher *config.Watcher
	metrics *observability.Metrics
}

// runServe runs the server until ctx is cancelled.
func runServe(ctx context.Context, opts *serveOptions) error {
	path, cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyServeOverrides(cfg, opts)

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting navrouter",
		observability.String("version", version),
		observability.String("config", path),
		observability.Int("routes", len(cfg.Routes)),
		observability.String("context", cfg.Context),
	)

	app, err := initApplication(cfg, logger)
	if err != nil {
		return err
	}

	if err := app.server.Start(ctx); err != nil {
		app.close(context.Background(), logger)
		return err
	}

	if opts.watch {
		app.watcher = startConfigWatcher(ctx, app, path, opts, logger)
	}

	<-ctx.Done()
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if app.watcher != nil {
		_ = app.watcher.Stop()
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	app.close(shutdownCtx, logger)
	logger.Info("navrouter stopped")
	return nil
}

func applyServeOverrides(cfg *config.Config, opts *serveOptions) {
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.logLevel != "" {
		cfg.Observability.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Observability.Logging.Format = opts.logFormat
	}
}

// initApplication wires the tracer, lookup cache backend and server.
func initApplication(cfg *config.Config, logger observability.Logger) (*application, error) {
	tracing := cfg.Observability.Tracing
	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  tracing.ServiceName,
		OTLPEndpoint: tracing.OTLPEndpoint,
		SamplingRate: tracing.SamplingRate,
		Enabled:      tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	if tracer.Enabled() {
		logger.Info("tracing enabled",
			observability.String("endpoint", tracing.OTLPEndpoint),
			observability.String("service", tracing.ServiceName))
	}

	store, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	metrics := observability.NewMetrics("")
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	srv, err := server.New(cfg,
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithCache(store),
		server.WithVersion(version),
	)
	if err != nil {
		_ = store.Close()
		_ = tracer.Shutdown(context.Background())
		return nil, err
	}

	return &application{
		server:  srv,
		store:   store,
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// startConfigWatcher reloads the server on configuration changes. Listener
// and logging overrides from flags are reapplied to every reload.
func startConfigWatcher(
	ctx context.Context,
	app *application,
	path string,
	opts *serveOptions,
	logger observability.Logger,
) *config.Watcher {
	watcher, err := config.NewWatcher(path,
		func(cfg *config.Config) {
			applyServeOverrides(cfg, opts)
			if err := app.server.Reload(cfg); err != nil {
				logger.Error("failed to apply configuration", observability.Error(err))
			}
		},
		config.WithLogger(logger),
		config.WithValidator(app.server.ValidateConfig),
		config.WithErrorCallback(func(err error) {
			app.metrics.RecordReload(false)
			logger.Error("configuration reload failed", observability.Error(err))
		}),
	)
	if err != nil {
		logger.Warn("configuration watcher disabled", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("configuration watcher disabled", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}
	return watcher
}

func (a *application) close(ctx context.Context, logger observability.Logger) {
	if err := a.store.Close(); err != nil {
		logger.Error("failed to close cache", observability.Error(err))
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}
}
