package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/powledger/internal/config"
	"github.com/gabapcia/powledger/internal/handlers/cli"
	"github.com/gabapcia/powledger/internal/infra/audit/webhook"
	"github.com/gabapcia/powledger/internal/infra/storage/redis"
	"github.com/gabapcia/powledger/internal/ledgerexport"
	"github.com/gabapcia/powledger/internal/pkg/logger"
	"github.com/gabapcia/powledger/internal/pkg/resilience/retry"
	"github.com/gabapcia/powledger/internal/pkg/telemetry"
	transport "github.com/gabapcia/powledger/internal/pkg/transport/http"
)

const shutdownTimeout = 5 * time.Second

// newExporter wires every configured sink. It returns a nil service when none
// is configured, and a close function releasing the sinks' connections.
func newExporter(ctx context.Context, cfg config.Config) (ledgerexport.Service, func(), error) {
	var (
		opts    []ledgerexport.Option
		closers []func()
	)

	if cfg.Redis.Addr != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}

		closers = append(closers, func() { _ = client.Close() })
		opts = append(opts, ledgerexport.WithPublisher("redis", client.ExportSink(cfg.ExportName)))
	}

	if cfg.WebhookURL != "" {
		httpClient := transport.NewClient(transport.WithLogging())
		opts = append(opts, ledgerexport.WithPublisher("webhook", webhook.New(httpClient, cfg.WebhookURL)))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if len(opts) == 0 {
		return nil, closeAll, nil
	}

	opts = append(opts, ledgerexport.WithRetry(retry.New(
		retry.WithAttempts(cfg.RetryAttempts),
		retry.WithOnRetry(func(attempt uint, err error) {
			logger.Warn(ctx, "retrying chain export", "attempt", attempt, "error", err)
		}),
	)))

	return ledgerexport.New(opts...), closeAll, nil
}

func main() {
	os.Exit(run())
}

// run wires the process and returns its exit code, so deferred cleanup runs
// before the process exits.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// telemetry first, so logger.Init can bridge into its LoggerProvider
	var telemetryErr error
	shutdownTelemetry := telemetry.ShutdownFunc(telemetry.Noop)
	if cfg.Telemetry.Enabled {
		var opts []telemetry.Option
		if cfg.Telemetry.Endpoint != "" {
			opts = append(opts, telemetry.WithEndpoint(cfg.Telemetry.Endpoint))
		}
		if cfg.Telemetry.Insecure {
			opts = append(opts, telemetry.WithInsecure())
		}

		shutdownTelemetry, telemetryErr = telemetry.Init(ctx, cfg.ServiceName, opts...)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if telemetryErr != nil {
		logger.Fatal(ctx, "error initializing telemetry", "error", telemetryErr)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error(ctx, "error shutting down telemetry", "error", err)
		}
	}()

	exporter, closeExporter, err := newExporter(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "error connecting export sinks", "error", err)
	}
	defer closeExporter()

	if err := cli.Run(ctx, os.Args, os.Stdout, cfg, exporter); err != nil {
		logger.Error(ctx, "command failed", "error", err)
		return 1
	}

	return 0
}
