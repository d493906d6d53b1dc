package driven

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// StorageProbe checks that the backing store is reachable.
type StorageProbe interface {
	// Probe checks reads and writes without leaving data behind.
	Probe(ctx context.Context) domain.StorageHealth
}
