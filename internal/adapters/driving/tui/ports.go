// Package tui provides an interactive terminal browser for the product
// catalog and its import history. It is a driving adapter on the same
// footing as the CLI and the HTTP API.
package tui

import (
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Products reads and trashes catalog products.
	Products driving.ProductService

	// Runs lists the import ledger.
	Runs driving.RunHistory

	// Sync starts imports from the imports view. Optional; without it the
	// view is read-only.
	Sync driving.SyncOrchestrator
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Products == nil {
		return ErrMissingProductService
	}
	if p.Runs == nil {
		return ErrMissingRunHistory
	}
	return nil
}
