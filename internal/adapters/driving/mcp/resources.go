package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

const (
	uriScheme = "foodsync://"

	// runsResourceLimit is the number of ledger entries in the runs resource.
	runsResourceLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent per-file import runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "products/{code}",
		Name:        "product",
		Description: "A single catalog product",
		MIMEType:    "application/json",
	}, s.handleProductResource)
}

// handleRunsResource returns the recent import history.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Runs == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	entries, err := s.ports.Runs.Recent(ctx, runsResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	type runInfo struct {
		ID               int64  `json:"id"`
		RunID            string `json:"run_id"`
		Filename         string `json:"filename"`
		State            string `json:"state"`
		ProductsImported int    `json:"products_imported"`
		StartedAt        string `json:"started_at"`
		CompletedAt      string `json:"completed_at,omitempty"`
		Error            string `json:"error,omitempty"`
	}

	infos := make([]runInfo, len(entries))
	for i, e := range entries {
		infos[i] = runInfo{
			ID:               e.ID,
			RunID:            e.RunID,
			Filename:         e.SourceName,
			State:            e.State.String(),
			ProductsImported: e.RecordsImported,
			StartedAt:        e.StartedAt.UTC().Format(time.RFC3339),
			Error:            e.ErrorDetail,
		}
		if e.CompletedAt != nil {
			infos[i].CompletedAt = e.CompletedAt.UTC().Format(time.RFC3339)
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleProductResource returns one product by code.
func (s *Server) handleProductResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	code, ok := extractProductCode(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	p, err := s.ports.Products.Get(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting product: %w", err)
	}

	data, err := json.MarshalIndent(toProductOutput(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling product: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractProductCode parses the code from a URI like foodsync://products/{code}.
func extractProductCode(uri string) (domain.ProductCode, bool) {
	const prefix = uriScheme + "products/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	code, err := domain.ParseProductCode(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return 0, false
	}
	return code, true
}
