package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/foodsync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API and the scheduled import",
	Long: `Starts the HTTP API. Unless --no-scheduler is given, the periodic
product import runs in the same process.

The configuration file is watched while serving; changing api.key takes
effect without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides api.addr)")
	serveCmd.Flags().Bool("no-scheduler", false, "do not run the scheduled import")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if apiServer == nil {
		return errors.New("API server not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	noScheduler, err := cmd.Flags().GetBool("no-scheduler")
	if err != nil {
		return fmt.Errorf("getting no-scheduler flag: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if addr == "" {
		addr = settings.API.Addr
	}
	if settings.API.Key == "" {
		logger.Warn("No API key configured; protected routes will reject every request. " +
			"Set one with 'foodsync config set api.key'.")
	}
	apiServer.SetAPIKey(settings.API.Key)

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.ListenAndServe(gctx, addr)
	})

	if scheduler != nil && !noScheduler {
		g.Go(func() error {
			err := scheduler.Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if configWatcher != nil {
		g.Go(func() error {
			return configWatcher.Watch(gctx, reloadAPIKey)
		})
	}

	cmd.Printf("Serving API on %s\n", addr)
	err = g.Wait()

	if scheduler != nil && !noScheduler {
		if serr := scheduler.Stop(); serr != nil {
			err = errors.Join(err, fmt.Errorf("stop scheduler: %w", serr))
		}
	}
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	cmd.Println("Server stopped.")
	return nil
}

// reloadAPIKey applies a changed API key after the config file is rewritten.
func reloadAPIKey() {
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("config reload: %v", err)
		return
	}
	apiServer.SetAPIKey(settings.API.Key)
	logger.Info("Configuration reloaded")
}
