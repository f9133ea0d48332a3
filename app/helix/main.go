package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/jrazmi/helix/app/helix/admin"
	"github.com/jrazmi/helix/app/helix/api"
	"github.com/jrazmi/helix/app/helix/config"
	"github.com/jrazmi/helix/bridge/scaffolding/mid"
	"github.com/jrazmi/helix/core/usecases/retention"
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/infrastructure/web"
	"github.com/jrazmi/helix/infrastructure/workers"
	"github.com/jrazmi/helix/sdk/environment"
	"github.com/jrazmi/helix/sdk/logger"
	"github.com/jrazmi/helix/sdk/telemetry"
)

var build = "develop"
var appName = "HELIX"

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName, logger.WithAttrs("service", "helix", "build", build))
	if err != nil {
		fmt.Println("unable to configure logging:", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// :*: SETTINGS :*:
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	// :*: START DATABASES :*:
	pg, err := postgresdb.NewFromEnv(appName, postgresdb.WithLogger(log.Logger))
	if err != nil {
		return fmt.Errorf("configuring postgres support: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing database connection")
		pg.Close()
	}()
	log.InfoContext(ctx, "init", "service", "postgres")

	if settings.Service.MigrateOnStart {
		log.InfoContext(ctx, "startup", "status", "applying migrations")
		if err := postgresdb.Migrate(ctx, pg, log.Logger); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}

	// :*: METRICS :*:
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// :*: REPOSITORIES & USE CASES :*:
	log.InfoContext(ctx, "startup", "status", "initializing repository support")
	repos := config.NewRepositories(log, pg, settings)
	cfg := config.Helix{
		Build:        build,
		Logger:       log,
		Telemetry:    telemetry.NewTelemetry(),
		Settings:     settings,
		DB:           pg,
		Registry:     registry,
		Repositories: repos,
		UseCases:     config.NewUseCases(log, repos),
	}

	// :*: WEB :*:
	server, err := web.NewServerFromEnv(appName, web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)))
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}
	handler, err := webHandler(cfg, server.Config.APIRoute)
	if err != nil {
		return err
	}
	server.Handler = handler

	// :*: RETENTION :*:
	pool, err := retentionPool(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.InfoContext(gctx, "startup", "status", "api router started", "host", server.Addr)
		return server.Run(gctx)
	})
	if pool != nil {
		g.Go(func() error {
			if err := pool.Start(gctx); err != nil && !errors.Is(err, workers.ErrPoolShutdown) {
				return fmt.Errorf("retention pool: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	log.InfoContext(ctx, "shutdown", "status", "shutdown complete")
	return err
}

func loadSettings() (config.Settings, error) {
	var s config.Settings
	targets := map[string]any{
		"service":   &s.Service,
		"profiles":  &s.Profiles,
		"activity":  &s.Activity,
		"retention": &s.Retention,
		"ratelimit": &s.RateLimit,
	}
	for name, target := range targets {
		if err := environment.ParseEnvTags(appName, target); err != nil {
			return config.Settings{}, fmt.Errorf("parsing %s config: %w", name, err)
		}
	}
	return s, nil
}

func webHandler(cfg config.Helix, route string) (*web.WebHandler, error) {
	// GLOBAL MIDDLEWARE
	h, err := web.NewWebHandlerFromEnv(appName,
		web.WithLogging(cfg.Logger),
		web.WithTelemetry(cfg.Telemetry),
		web.WithGlobalMiddleware(
			mid.Logger(cfg.Logger),
			mid.Errors(cfg.Logger),
			mid.Panics(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("webhandler: %w", err)
	}

	// API
	apiMiddleware := []web.Middleware{mid.Metrics(mid.NewHTTPMetrics(cfg.Registry, config.MetricsNamespace))}
	if cfg.Settings.Service.RateLimitEnabled {
		apiMiddleware = append(apiMiddleware, mid.RateLimit(mid.NewRateLimiter(cfg.Settings.RateLimit)))
	}
	api.AddHandlers(h, route, cfg, apiMiddleware...)

	// ADMIN
	admin.AddHandlers(h, admin.Config{
		Build: cfg.Build,
		Ready: func(ctx context.Context) error {
			return postgresdb.StatusCheck(ctx, cfg.DB)
		},
		Registry: cfg.Registry,
	})

	return h, nil
}

func retentionPool(cfg config.Helix) (*workers.WorkerPool[retention.Batch], error) {
	if !cfg.Settings.Service.RetentionEnabled {
		return nil, nil
	}

	processor := retention.NewProcessor(cfg.Logger, cfg.Repositories.ActivityLogs, cfg.Settings.Retention)
	pool, err := workers.NewFromEnv[retention.Batch](appName, processor,
		workers.WithName("retention"),
		workers.WithLogger(cfg.Logger),
		workers.WithMetrics(workers.NewPrometheusMetrics(cfg.Registry, config.MetricsNamespace, "retention")),
	)
	if err != nil {
		return nil, fmt.Errorf("retention pool: %w", err)
	}
	pool.AddPreProcessHooks(workers.LogStartHook[retention.Batch](cfg.Logger))
	pool.AddPostProcessHooks(workers.LogEndHook[retention.Batch](cfg.Logger))
	return pool, nil
}
