// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewProducts is the paged product list.
	ViewProducts ViewType = iota
	// ViewProduct shows a single product.
	ViewProduct
	// ViewImports shows the import history.
	ViewImports
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewProducts:
		return "products"
	case ViewProduct:
		return "product"
	case ViewImports:
		return "imports"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ProductsLoaded carries one page of products.
type ProductsLoaded struct {
	Page *driving.ProductPage
	Err  error
}

// ProductSelected is sent when a product is opened from the list.
type ProductSelected struct {
	Product domain.Product
}

// ProductTrashed reports the outcome of moving a product to trash.
type ProductTrashed struct {
	Code domain.ProductCode
	Err  error
}

// RunsLoaded carries recent ledger entries.
type RunsLoaded struct {
	Entries []domain.RunEntry
	Err     error
}

// ImportProgress carries a progress snapshot of the active import.
type ImportProgress struct {
	Status *driving.SyncStatus
}

// ImportFinished reports the outcome of an import started from the TUI.
type ImportFinished struct {
	Result *domain.ImportResult
	Err    error
}

// ErrorOccurred reports an error to display.
type ErrorOccurred struct {
	Err error
}

// Quit requests the application to exit.
type Quit struct{}
