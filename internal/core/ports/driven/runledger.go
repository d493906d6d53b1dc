package driven

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// RunLedger records one entry per file-processing attempt.
// Entries are never deleted by the import pipeline.
type RunLedger interface {
	// Append persists a new entry and returns the identifier assigned to it.
	Append(ctx context.Context, entry domain.RunEntry) (int64, error)

	// UpdateByID overwrites the stored entry with the same ID.
	// Returns domain.ErrNotFound if the ID is zero or unknown.
	UpdateByID(ctx context.Context, entry domain.RunEntry) error

	// MostRecent returns the entry with the latest StartedAt.
	// Returns nil and no error if the ledger is empty.
	MostRecent(ctx context.Context) (*domain.RunEntry, error)

	// List returns up to limit entries, most recently started first.
	List(ctx context.Context, limit int) ([]domain.RunEntry, error)
}
