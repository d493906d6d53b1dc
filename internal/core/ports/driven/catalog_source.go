package driven

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// CatalogSource reads the remote bulk catalog.
//
// Implementations mask transient network failures behind bounded retry.
// Errors that survive retry match domain.ErrTransport; payloads that cannot
// be parsed match domain.ErrDecode and are never retried.
type CatalogSource interface {
	// ListFiles returns the remote file names in listing order.
	// Blank lines are dropped and names are trimmed.
	ListFiles(ctx context.Context) ([]string, error)

	// FetchRecords returns at most limit records from the named file.
	// An empty payload yields an empty slice and no error.
	FetchRecords(ctx context.Context, name string, limit int) ([]domain.FeedRecord, error)

	// Ping checks the listing resource is reachable with a single attempt.
	Ping(ctx context.Context) error
}
