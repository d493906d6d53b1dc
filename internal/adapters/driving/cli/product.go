package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Inspect and manage catalog products",
}

var productGetCmd = &cobra.Command{
	Use:   "get [code]",
	Short: "Show a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductGet,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products, highest code first",
	RunE:  runProductList,
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete [code]",
	Short: "Move a product to trash",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductDelete,
}

func init() {
	productListCmd.Flags().Int("page", 1, "page number")
	productListCmd.Flags().Int("limit", domain.DefaultPageSize, "products per page")
	productListCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")
	productGetCmd.Flags().StringP("output", "o", "text", "output format: text, json or yaml")

	productCmd.AddCommand(productGetCmd)
	productCmd.AddCommand(productListCmd)
	productCmd.AddCommand(productDeleteCmd)
	rootCmd.AddCommand(productCmd)
}

func runProductGet(cmd *cobra.Command, args []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	code, err := domain.ParseProductCode(args[0])
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("getting output flag: %w", err)
	}
	format, err := parseOutputFormat(output)
	if err != nil {
		return err
	}

	p, err := productService.Get(cmd.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s not found", code)
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), p, format)
	}
	writeProduct(cmd, p)
	return nil
}

func writeProduct(cmd *cobra.Command, p *domain.Product) {
	cmd.Printf("Code:        %s\n", p.Code)
	cmd.Printf("Status:      %s\n", p.Status)
	cmd.Printf("Imported:    %s\n", p.ImportedAt.Format("2006-01-02 15:04:05"))

	fields := []struct {
		label string
		value *string
	}{
		{"Name", p.ProductName},
		{"Brands", p.Brands},
		{"Quantity", p.Quantity},
		{"Categories", p.Categories},
		{"Nutri-Score", p.NutriscoreGrade},
		{"Image", p.ImageURL},
		{"URL", p.URL},
	}
	for _, f := range fields {
		if f.value != nil && *f.value != "" {
			cmd.Printf("%-12s %s\n", f.label+":", *f.value)
		}
	}
}

func runProductList(cmd *cobra.Command, _ []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	page, err := cmd.Flags().GetInt("page")
	if err != nil {
		return fmt.Errorf("getting page flag: %w", err)
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

	result, err := productService.List(cmd.Context(), page, limit)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), result.Products, format)
	}

	if len(result.Products) == 0 {
		cmd.Println("No products found.")
		return nil
	}
	for _, p := range result.Products {
		name := "(unnamed)"
		if p.ProductName != nil && strings.TrimSpace(*p.ProductName) != "" {
			name = *p.ProductName
		}
		cmd.Printf("%-15s %-10s %s\n", p.Code, p.Status, name)
	}
	cmd.Printf("\nPage %d of %d (%s products)\n",
		result.Page, result.TotalPages, humanize.Comma(int64(result.Total)))
	return nil
}

func runProductDelete(cmd *cobra.Command, args []string) error {
	if productService == nil {
		return errors.New("product service not configured")
	}

	code, err := domain.ParseProductCode(args[0])
	if err != nil {
		return err
	}

	if err := productService.Delete(cmd.Context(), code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s not found", code)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	cmd.Printf("Product %s moved to trash.\n", code)
	return nil
}
