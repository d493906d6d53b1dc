package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
	"github.com/custodia-labs/foodsync/internal/logger"
)

// version is set at build time by the bootstrap.
var version = "dev"

// Services used by the commands. They are nil until the bootstrap has run;
// commands report a "not configured" error in that case.
var (
	syncOrchestrator driving.SyncOrchestrator
	productService   driving.ProductService
	seeder           driving.Seeder
	runHistory       driving.RunHistory
	settingsService  driving.SettingsService
	scheduler        driving.Scheduler
	remoteSource     SourceChecker
	apiServer        APIServer
	configWatcher    ConfigWatcher
)

// SourceChecker tests that the remote catalog is reachable.
type SourceChecker interface {
	Ping(ctx context.Context) error
}

// APIServer is the HTTP API started by the serve command.
type APIServer interface {
	ListenAndServe(ctx context.Context, addr string) error
	SetAPIKey(key string)
}

// ConfigWatcher reports changes to the configuration file.
type ConfigWatcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// Services holds everything the commands depend on.
type Services struct {
	Sync      driving.SyncOrchestrator
	Products  driving.ProductService
	Seeder    driving.Seeder
	Runs      driving.RunHistory
	Settings  driving.SettingsService
	Scheduler driving.Scheduler
	Source    SourceChecker
	API       APIServer
	Config    ConfigWatcher
}

// Options are the global flags passed to the bootstrap.
type Options struct {
	DataDir string
	Verbose bool
}

// Bootstrap builds the services for a command invocation. The returned
// cleanup function is called once the command has finished.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	bootstrap Bootstrap
	cleanup   func() error
	opts      Options
)

var rootCmd = &cobra.Command{
	Use:   "foodsync",
	Short: "Food catalog API and bulk import",
	Long: `foodsync keeps a local food product catalog in sync with the
Open Food Facts bulk export and serves it over an HTTP API.

Run 'foodsync import' for a one-off import, or 'foodsync serve' to start
the API together with the scheduled import.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (default ~/.foodsync)")
}

// SetVersion sets the version reported by the version command and sent
// to the remote source.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Version returns the current version.
func Version() string {
	return version
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	syncOrchestrator = s.Sync
	productService = s.Products
	seeder = s.Seeder
	runHistory = s.Runs
	settingsService = s.Settings
	scheduler = s.Scheduler
	remoteSource = s.Source
	apiServer = s.API
	configWatcher = s.Config
}

// skipBootstrap marks commands that need no services.
const skipBootstrap = "skip-bootstrap"

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		if cerr := cleanup(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("cleanup: %w", cerr))
		}
		cleanup = nil
	}
	return err
}
