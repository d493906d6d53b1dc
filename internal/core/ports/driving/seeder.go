package driving

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// Seeder loads sample products from a local file.
type Seeder interface {
	// Seed inserts every record whose product is not stored yet.
	Seed(ctx context.Context, records []domain.FeedRecord) (*domain.SeedReport, error)
}
