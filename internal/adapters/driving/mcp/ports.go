package mcp

import (
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Products provides catalog reads.
	Products driving.ProductService

	// Runs exposes the import history. Optional.
	Runs driving.RunHistory

	// Sync runs imports. Optional; the import tools report an error without it.
	Sync driving.SyncOrchestrator
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Products == nil {
		return ErrMissingProductService
	}
	return nil
}
