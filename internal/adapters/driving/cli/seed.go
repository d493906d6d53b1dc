package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/connectors/openfoodfacts"
	"github.com/custodia-labs/foodsync/internal/core/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load sample products from a local export file",
	Long: `Loads products from a local JSON array in the bulk export format
(optionally gzip-compressed) into the catalog.

Products that are already stored are left as they are, records without a
code are ignored, and nothing is written to the import history.

Examples:
  foodsync seed products.json
  foodsync seed products.json.gz --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	format, err := parseOutputFormat(output)
	if err != nil {
		return err
	}
	if seeder == nil {
		return errors.New("seed service not configured")
	}

	name := args[0]
	data, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	records, err := openfoodfacts.DecodeFile(name, data)
	if err != nil {
		return err
	}

	report, err := seeder.Seed(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), report, format)
	}
	writeSeedReport(cmd.OutOrStdout(), name, report)
	return nil
}

func writeSeedReport(w io.Writer, name string, r *domain.SeedReport) {
	fmt.Fprintf(w, "Loading sample products from %s\n", name)
	for _, o := range r.Outcomes {
		switch o.Status {
		case domain.SeedImported:
			line := "  + " + o.Code.String()
			if o.Name != "" {
				line += " " + o.Name
			}
			fmt.Fprintln(w, line)
		case domain.SeedExisting:
			fmt.Fprintf(w, "  = %s already exists\n", o.Code)
		case domain.SeedFailed:
			fmt.Fprintf(w, "  ! %s\n", o.Error)
		}
	}
	fmt.Fprintf(w, "Seed complete: %s imported", english.Plural(r.Imported, "product", "products"))
	if r.Existing > 0 || r.Failed > 0 {
		fmt.Fprintf(w, " (%d existing, %d failed)", r.Existing, r.Failed)
	}
	fmt.Fprintln(w)
}
