package driving

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// RunHistory exposes the import ledger for reporting.
type RunHistory interface {
	// Recent returns up to limit ledger entries, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.RunEntry, error)
}
