package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog interactively",
	Long: `Opens a terminal UI to page through products, move them to trash,
review the import history and start an import.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}
	if runHistory == nil {
		return errors.New("run history not configured")
	}
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("browse requires an interactive terminal")
	}

	app, err := tui.NewApp(&tui.Ports{
		Products: productService,
		Runs:     runHistory,
		Sync:     syncOrchestrator,
	})
	if err != nil {
		return err
	}
	return app.Run(cmd.Context())
}
