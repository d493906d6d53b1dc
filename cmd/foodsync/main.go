// Package main is the foodsync entry point. It wires the adapters to the
// core services and hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/api"
	"github.com/custodia-labs/foodsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/foodsync/internal/connectors/openfoodfacts"
	"github.com/custodia-labs/foodsync/internal/core/services"
	"github.com/custodia-labs/foodsync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap builds every service from the configuration in the data directory.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	configStore, err := file.NewConfigStore(opts.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("settings: %w", err)
	}

	dbDir := settings.Database.Dir
	if dbDir == "" && opts.DataDir != "" {
		dbDir = filepath.Join(opts.DataDir, "data")
	}
	store, err := sqlite.NewStore(dbDir)
	if err != nil {
		return nil, nil, fmt.Errorf("storage: %w", err)
	}
	logger.Debug("Using database %s", store.Path())

	source, err := openfoodfacts.NewClient(openfoodfacts.ConfigFromSettings(settings.Remote, cli.Version()))
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("remote source: %w", err)
	}

	syncOrch := services.NewSyncOrchestrator(
		source,
		store.ProductStore(),
		store.RunLedger(),
		settings.Import.LimitPerFile,
	)
	productService := services.NewProductService(store.ProductStore())
	runHistory := services.NewRunHistoryService(store.RunLedger())
	scheduler := services.NewScheduler(
		settingsService.GetSchedulerConfig(),
		store.SchedulerStore(),
		syncOrch,
	)

	apiServer := api.NewServer(api.Config{
		Products: productService,
		Runs:     runHistory,
		Sync:     syncOrch,
		Storage:  store,
		APIKey:   settings.API.Key,
		Log:      logger.Zap(),
	})

	svc := &cli.Services{
		Sync:      syncOrch,
		Products:  productService,
		Seeder:    services.NewSeeder(store.ProductStore()),
		Runs:      runHistory,
		Settings:  settingsService,
		Scheduler: scheduler,
		Source:    source,
		API:       apiServer,
		Config:    configStore,
	}
	return svc, store.Close, nil
}
