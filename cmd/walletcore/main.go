package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gabapcia/walletcore/internal/chainregistry"
	"github.com/gabapcia/walletcore/internal/handlers/cli"
	"github.com/gabapcia/walletcore/internal/infra/chainlist"
	"github.com/gabapcia/walletcore/internal/infra/storage/redis"
	"github.com/gabapcia/walletcore/internal/pkg/config"
	"github.com/gabapcia/walletcore/internal/pkg/logger"
	"github.com/gabapcia/walletcore/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletcore/internal/pkg/telemetry"
	"github.com/gabapcia/walletcore/internal/pkg/transport/http"
	"github.com/gabapcia/walletcore/internal/walletregistry"
)

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(ctx) }()
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := chainregistry.DefaultRegistry()

	if cfg.ChainlistURL != "" {
		checker := chainlist.NewClient(http.NewClient(), cfg.ChainlistURL)
		mismatches, err := checker.CrossCheck(ctx, registry)
		if err != nil {
			logger.Warn(ctx, "chain list cross-check failed", "error", err)
		}
		for _, mismatch := range mismatches {
			logger.Warn(ctx, "network registry disagrees with chain list",
				"chain_namespace", mismatch.ChainNamespace,
				"field", mismatch.Field,
				"registry", mismatch.Registry,
				"remote", mismatch.Remote,
			)
		}
	}

	storage, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer func() { _ = storage.Close() }()

	service := walletregistry.New(storage, storage, registry, retry.New())

	return cli.Run(ctx, service, registry)
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
