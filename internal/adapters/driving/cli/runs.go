package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent import history",
	Long:  `Lists the most recent file imports recorded in the run ledger, newest first.`,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntP("limit", "n", domain.DefaultPageSize, "maximum number of entries")
	runsCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("getting limit flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	format, err := parseOutputFormat(output)
	if err != nil {
		return err
	}

	entries, err := runHistory.Recent(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return writeRuns(cmd.OutOrStdout(), entries, format, time.Now())
}
