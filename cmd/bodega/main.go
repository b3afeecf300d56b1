package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/SscSPs/bodega_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/bodega_ledger/internal/adapters/database/redis"
	"github.com/SscSPs/bodega_ledger/internal/adapters/filestore"
	"github.com/SscSPs/bodega_ledger/internal/adapters/memory"
	portsrepo "github.com/SscSPs/bodega_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/bodega_ledger/internal/core/services"
	"github.com/SscSPs/bodega_ledger/internal/platform/config"
	"github.com/SscSPs/bodega_ledger/internal/platform/logging"
	"github.com/SscSPs/bodega_ledger/internal/platform/metrics"
	"github.com/SscSPs/bodega_ledger/pkg/database"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: stdout}
	defer a.close()

	root := a.newRootCmd()
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

// open loads the configuration from the parsed flags and wires the store and the
// services behind the session controller.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(cmd.Root().PersistentFlags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	// Initialize structured logger
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.IsProduction)
	slog.SetDefault(a.logger)
	ctx := logging.WithLogger(cmd.Context(), a.logger)
	cmd.SetContext(ctx)

	store, closeStore, err := openStore(ctx, cfg, a.logger)
	if err != nil {
		a.logger.Error("Failed to open store", slog.String("backend", string(cfg.StoreBackend)), slog.String("error", err.Error()))
		return err
	}
	a.closers = append(a.closers, closeStore)

	a.registry = prometheus.NewRegistry()
	m := metrics.NewLedgerMetrics(a.registry)

	container, err := services.NewServiceContainer(ctx, cfg, store, m)
	if err != nil {
		a.logger.Error("Failed to initialize services", slog.String("error", err.Error()))
		return err
	}
	a.session = container.Session
	return nil
}

// close writes the metrics file, then releases the store.
func (a *app) close() {
	if a.cfg != nil && a.registry != nil {
		writeMetrics(a.cfg, a.registry, a.logger)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openStore builds the persistence adapter named by the config.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendFile:
		store, err := filestore.New(cfg.DataFile, cfg.SessionFile)
		return store, noop, err

	case config.BackendMemory:
		logger.Warn("Memory backend selected, nothing will survive this process")
		return memory.New(), noop, nil

	case config.BackendPostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, noop, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}
		return pgsql.NewSnapshotRepository(pool), func() { database.ClosePgxPool(pool, logger) }, nil

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Error("Error closing redis client", slog.String("error", err.Error()))
			}
		}
		return redis.NewStore(client, cfg.RedisKeyPrefix), closeFn, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func writeMetrics(cfg *config.Config, registry *prometheus.Registry, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
		logger.Error("Failed to write metrics", slog.String("path", cfg.MetricsFile), slog.String("error", err.Error()))
	}
}
