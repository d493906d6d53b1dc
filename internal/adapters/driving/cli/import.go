package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// errImportFailed is returned when the remote listing could not be read.
var errImportFailed = errors.New("import failed")

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import products from the remote bulk export",
	Long: `Runs one import from the Open Food Facts bulk export.

Every file in the remote listing is fetched in turn and its products are
created or updated in the local catalog. A file that cannot be fetched is
reported and skipped; the command only fails when the listing itself
cannot be read.

Use --check to test that the remote source is reachable without importing.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("check", false, "only check that the remote source is reachable")
	importCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("getting check flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	format, err := parseOutputFormat(output)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if check {
		return runImportCheck(ctx, cmd)
	}

	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	var result *domain.ImportResult
	if format == formatText && isTerminal(cmd.OutOrStdout()) {
		result, err = importWithProgress(ctx, cmd, syncOrchestrator)
	} else {
		result, err = syncOrchestrator.Run(ctx)
	}
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if err := writeImportReport(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !result.Success {
		if rerr := result.Err(); rerr != nil {
			return fmt.Errorf("%w: %w", errImportFailed, rerr)
		}
		return errImportFailed
	}
	return nil
}

func runImportCheck(ctx context.Context, cmd *cobra.Command) error {
	if remoteSource == nil {
		return errors.New("remote source not configured")
	}

	cmd.Println("Checking remote source...")
	if err := remoteSource.Ping(ctx); err != nil {
		return fmt.Errorf("remote source unreachable: %w", err)
	}
	cmd.Println("Remote source is reachable.")
	return nil
}

// importWithProgress runs an import while displaying progress updates.
func importWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncOrch driving.SyncOrchestrator,
) (*domain.ImportResult, error) {
	type outcome struct {
		result *domain.ImportResult
		err    error
	}

	// Start import in goroutine
	done := make(chan outcome, 1)
	go func() {
		r, err := syncOrch.Run(ctx)
		done <- outcome{result: r, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	printed := false
	for {
		select {
		case o := <-done:
			if printed {
				cmd.Print("\r\033[K")
			}
			return o.result, o.err
		case <-ticker.C:
			// Best effort; a status error only skips this update.
			status, err := syncOrch.Status(ctx)
			if err != nil || status == nil || !status.Running {
				continue
			}
			cmd.Printf("\r\033[KImporting %s... %d files, %d products",
				status.CurrentFile, status.FilesProcessed, status.RecordsImported)
			printed = true
		}
	}
}
