// Package main starts the CRM chat relay. It wires dependencies with
// samber/do v2, serves HTTP, and shuts down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"

	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/clients/bitrix"
	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/clients/gemini"
	adapthttp "github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http"
	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/crm-chat-relay/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/crm-chat-relay/internal/app"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/config"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/health"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/httpclient"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/logging"
	"github.com/jsamuelsen11/crm-chat-relay/internal/platform/telemetry"
	"github.com/jsamuelsen11/crm-chat-relay/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
	defaultProfile        = "local"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		profile = defaultProfile
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(ctx, injector, cfg, logger)

	// Resolving the server wires the full graph.
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(do.MustInvoke[*bitrix.Client](injector))

	logger.Info("relay configured",
		slog.String("profile", profile),
		slog.Bool("static_webhook", cfg.CRM.WebhookURL != ""),
		slog.String("llm_model", cfg.LLM.Model),
	)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := server.Run(sigCtx)
	if serveErr != nil {
		logger.Error("server stopped with error", slog.Any("error", serveErr))
	}

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return serveErr
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(ctx context.Context, injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(i do.Injector) (*httpclient.Client, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return httpclient.New(&cfg.CRM, "bitrix", metrics, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (*bitrix.Client, error) {
		httpClient := do.MustInvoke[*httpclient.Client](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		transport := bitrix.NewTransport(httpClient, cfg.CRM.WebhookURL, logger)
		collector := bitrix.NewCollector(transport, metrics, logger)
		return bitrix.NewClient(transport, collector, httpClient, cfg.CRM.PageSize, logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.CRMClient, error) {
		return do.MustInvoke[*bitrix.Client](i), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.LanguageModel, error) {
		model, err := gemini.New(ctx, &cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		return model, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.QueryService, error) {
		return app.NewQueryService(do.MustInvoke[ports.CRMClient](i), logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.DirectoryService, error) {
		return app.NewDirectoryService(do.MustInvoke[ports.CRMClient](i), logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ChatService, error) {
		return app.NewChatService(
			do.MustInvoke[ports.QueryService](i),
			do.MustInvoke[ports.DirectoryService](i),
			do.MustInvoke[ports.LanguageModel](i),
			do.MustInvoke[*telemetry.Metrics](i),
			cfg.Chat.DisplayLimit,
			logger,
		), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.WebhookHandler, error) {
		return handlers.NewWebhookHandler(do.MustInvoke[ports.ChatService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.DirectoryHandler, error) {
		return handlers.NewDirectoryHandler(do.MustInvoke[ports.DirectoryService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		return handlers.NewHealthHandler(do.MustInvoke[ports.HealthRegistry](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(
			do.MustInvoke[*handlers.WebhookHandler](i),
			do.MustInvoke[*handlers.DirectoryHandler](i),
			do.MustInvoke[*handlers.HealthHandler](i),
			adapthttp.RouterOptions{
				ServiceName:    cfg.Telemetry.ServiceName,
				AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			},
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, serverShutdownTimeout, logger), nil
	})
}
