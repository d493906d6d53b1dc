package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// ErrImportsUnavailable is returned by the import tools when the server
// was started without a sync orchestrator.
var ErrImportsUnavailable = errors.New("imports are not available on this server")

// GetProductInput is the input schema for the get_product tool.
type GetProductInput struct {
	Code int64 `json:"code" jsonschema:"the numeric product barcode"`
}

// ListProductsInput is the input schema for the list_products tool.
type ListProductsInput struct {
	Page  int `json:"page,omitempty" jsonschema:"page number starting at 1 (default 1)"`
	Limit int `json:"limit,omitempty" jsonschema:"products per page, at most 100 (default 20)"`
}

// ProductOutput is a product as returned by the tools.
type ProductOutput struct {
	Code            int64    `json:"code"`
	Status          string   `json:"status"`
	ImportedAt      string   `json:"imported_at"`
	Name            string   `json:"product_name,omitempty"`
	Brands          string   `json:"brands,omitempty"`
	Quantity        string   `json:"quantity,omitempty"`
	Categories      string   `json:"categories,omitempty"`
	Labels          string   `json:"labels,omitempty"`
	Stores          string   `json:"stores,omitempty"`
	Ingredients     string   `json:"ingredients_text,omitempty"`
	ServingSize     string   `json:"serving_size,omitempty"`
	ServingQuantity *float64 `json:"serving_quantity,omitempty"`
	NutriscoreGrade string   `json:"nutriscore_grade,omitempty"`
	NutriscoreScore *int64   `json:"nutriscore_score,omitempty"`
	URL             string   `json:"url,omitempty"`
}

// GetProductOutput is the output schema for the get_product tool.
type GetProductOutput struct {
	Product ProductOutput `json:"product"`
}

// ListProductsOutput is the output schema for the list_products tool.
type ListProductsOutput struct {
	Products   []ProductOutput `json:"products"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// StartImportInput is the (empty) input schema for the start_import tool.
type StartImportInput struct{}

// ImportOutput summarises a finished import run.
type ImportOutput struct {
	RunID           string   `json:"run_id"`
	Success         bool     `json:"success"`
	FilesProcessed  int      `json:"files_processed"`
	ProductsCreated int      `json:"products_created"`
	ProductsUpdated int      `json:"products_updated"`
	RecordsSkipped  int      `json:"records_skipped"`
	RecordsRejected int      `json:"records_rejected"`
	Errors          []string `json:"errors"`
	Duration        string   `json:"duration"`
}

// ImportStatusInput is the (empty) input schema for the import_status tool.
type ImportStatusInput struct{}

// ImportStatusOutput is the output schema for the import_status tool.
type ImportStatusOutput struct {
	Running        bool   `json:"running"`
	RunID          string `json:"run_id,omitempty"`
	CurrentFile    string `json:"current_file,omitempty"`
	FilesProcessed int    `json:"files_processed"`
	ProductsSoFar  int    `json:"products_imported"`
	ErrorCount     int    `json:"error_count"`
	LastRunStarted string `json:"last_run_started_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_product",
		Description: "Look up a catalog product by barcode",
	}, s.handleGetProduct)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_products",
		Description: "List catalog products, most recent barcodes first",
	}, s.handleListProducts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_import",
		Description: "Import the remote bulk catalog and wait for the run to finish",
	}, s.handleStartImport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "import_status",
		Description: "Report the progress of the running import, if any",
	}, s.handleImportStatus)
}

func (s *Server) handleGetProduct(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetProductInput,
) (*mcp.CallToolResult, GetProductOutput, error) {
	code, err := domain.NewProductCode(input.Code)
	if err != nil {
		return nil, GetProductOutput{}, err
	}
	p, err := s.ports.Products.Get(ctx, code)
	if err != nil {
		return nil, GetProductOutput{}, err
	}
	return nil, GetProductOutput{Product: toProductOutput(p)}, nil
}

func (s *Server) handleListProducts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListProductsInput,
) (*mcp.CallToolResult, ListProductsOutput, error) {
	page, err := s.ports.Products.List(ctx, input.Page, input.Limit)
	if err != nil {
		return nil, ListProductsOutput{}, err
	}

	output := ListProductsOutput{
		Products:   make([]ProductOutput, len(page.Products)),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for i := range page.Products {
		output.Products[i] = toProductOutput(&page.Products[i])
	}
	return nil, output, nil
}

func (s *Server) handleStartImport(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StartImportInput,
) (*mcp.CallToolResult, ImportOutput, error) {
	if s.ports.Sync == nil {
		return nil, ImportOutput{}, ErrImportsUnavailable
	}
	result, err := s.ports.Sync.Run(ctx)
	if err != nil {
		return nil, ImportOutput{}, err
	}

	output := ImportOutput{
		RunID:           result.RunID,
		Success:         result.Success,
		FilesProcessed:  result.FilesProcessed,
		ProductsCreated: result.RecordsCreated,
		ProductsUpdated: result.RecordsUpdated,
		RecordsSkipped:  result.RecordsSkipped,
		RecordsRejected: result.RecordsRejected,
		Errors:          make([]string, 0, len(result.Errors)),
		Duration:        result.EndedAt.Sub(result.StartedAt).Round(time.Millisecond).String(),
	}
	for _, e := range result.Errors {
		if e.FileName == "" {
			output.Errors = append(output.Errors, e.Error)
			continue
		}
		output.Errors = append(output.Errors, e.FileName+": "+e.Error)
	}
	return nil, output, nil
}

func (s *Server) handleImportStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ImportStatusInput,
) (*mcp.CallToolResult, ImportStatusOutput, error) {
	if s.ports.Sync == nil {
		return nil, ImportStatusOutput{}, ErrImportsUnavailable
	}
	status, err := s.ports.Sync.Status(ctx)
	if err != nil {
		return nil, ImportStatusOutput{}, err
	}
	last, err := s.ports.Sync.LastRunStartedAt(ctx)
	if err != nil {
		return nil, ImportStatusOutput{}, err
	}

	output := ImportStatusOutput{
		Running:        status.Running,
		RunID:          status.RunID,
		CurrentFile:    status.CurrentFile,
		FilesProcessed: status.FilesProcessed,
		ProductsSoFar:  status.RecordsImported,
		ErrorCount:     status.ErrorCount,
	}
	if last != nil {
		output.LastRunStarted = last.UTC().Format(time.RFC3339)
	}
	return nil, output, nil
}

func toProductOutput(p *domain.Product) ProductOutput {
	return ProductOutput{
		Code:            int64(p.Code),
		Status:          p.Status.String(),
		ImportedAt:      p.ImportedAt.UTC().Format(time.RFC3339),
		Name:            deref(p.ProductName),
		Brands:          deref(p.Brands),
		Quantity:        deref(p.Quantity),
		Categories:      deref(p.Categories),
		Labels:          deref(p.Labels),
		Stores:          deref(p.Stores),
		Ingredients:     deref(p.IngredientsText),
		ServingSize:     deref(p.ServingSize),
		ServingQuantity: p.ServingQuantity,
		NutriscoreGrade: deref(p.NutriscoreGrade),
		NutriscoreScore: p.NutriscoreScore,
		URL:             deref(p.URL),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
