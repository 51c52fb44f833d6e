// Command taskdash runs registered functions through a cached, single-flight
// executor and reports on them from a CLI, a terminal dashboard or MCP.
package main

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/custodia-labs/taskdash/internal/adapters/driven/config/file"
	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/taskdash/internal/adapters/driven/substrate/asynq"
	"github.com/custodia-labs/taskdash/internal/adapters/driven/substrate/local"
	"github.com/custodia-labs/taskdash/internal/adapters/driving/cli"
	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/services"
	"github.com/custodia-labs/taskdash/internal/functions"
	"github.com/custodia-labs/taskdash/internal/logger"
	"github.com/custodia-labs/taskdash/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := file.LoadDotEnv(); err != nil {
		logger.Warn("%v", err)
	}

	cli.SetVersion(version)
	cli.SetFactory(buildServices)
	return cli.Execute(ctx)
}

// buildServices opens the configured store and substrate. It runs only for
// commands that need them, so version and help work without Redis or a
// database.
func buildServices(ctx context.Context) (cli.Services, func(), error) {
	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("shutdown: %v", err)
			}
		}
	}
	fail := func(err error) (cli.Services, func(), error) {
		release()
		return cli.Services{}, nil, err
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fail(fmt.Errorf("opening config: %w", err))
	}
	// The watcher reloads the file before calling back.
	loadSettings := func() (domain.Settings, error) {
		return file.LoadSettings(configStore)
	}
	settings, err := file.LoadSettings(configStore)
	if err != nil {
		return fail(err)
	}

	store, closeStore, err := openHistoryStore(ctx, settings)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeStore)

	registry, err := services.NewRegistry(functions.Builtins()...)
	if err != nil {
		return fail(err)
	}

	metrics, err := telemetry.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fail(err)
	}

	executor := services.NewExecutor(registry, store, metrics, services.ExecutorConfig{
		LockTimeout: settings.LockTimeout,
		ExecTimeout: settings.ExecTimeout,
	})

	var (
		substrate driven.Substrate
		worker    cli.Worker
	)
	switch settings.SubstrateDriver {
	case domain.SubstrateAsynq:
		config := asynq.Config{
			RedisAddr:   settings.RedisAddr,
			Queue:       settings.Queue,
			Concurrency: settings.Concurrency,
		}
		s, err := asynq.New(ctx, config)
		if err != nil {
			return fail(err)
		}
		substrate = s
		worker = asynq.NewWorker(config, registry, executor)
	default:
		substrate = local.New(executor, settings.Concurrency)
	}
	closers = append(closers, substrate.Close)

	return cli.Services{
		Runner:   services.NewRunner(registry, store, substrate, services.NewWaiter(settings.PollInterval)),
		Registry: registry,
		Queue:    services.NewQueueReporter(substrate),
		History:  services.NewHistoryService(store),
		Settings: services.NewSettingsService(settings, configStore, loadSettings),
		Worker:   worker,
	}, release, nil
}

// openHistoryStore opens the configured history store and its closer.
func openHistoryStore(ctx context.Context, settings domain.Settings) (driven.HistoryStore, func() error, error) {
	switch settings.StorageDriver {
	case domain.StoragePostgres:
		store, err := postgres.NewStore(ctx, settings.StorageDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case domain.StorageMemory:
		return memory.NewHistoryStore(), func() error { return nil }, nil
	default:
		store, err := sqlite.NewStore(settings.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return store.HistoryStore(), store.Close, nil
	}
}
