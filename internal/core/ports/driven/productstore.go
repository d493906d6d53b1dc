package driven

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// ProductStore persists catalog products keyed by product code.
// It holds no business logic; create-versus-update decisions belong to callers.
type ProductStore interface {
	// Exists reports whether a product with the code is stored.
	Exists(ctx context.Context, code domain.ProductCode) (bool, error)

	// FindByCode retrieves a product. Returns domain.ErrNotFound if absent.
	FindByCode(ctx context.Context, code domain.ProductCode) (*domain.Product, error)

	// Insert stores a new product. Returns domain.ErrAlreadyExists if the
	// code is already stored.
	Insert(ctx context.Context, product domain.Product) error

	// Update overwrites every attribute of a stored product with the
	// values on product, nil included. Callers merge partial updates first.
	// Returns domain.ErrNotFound if the code is not stored.
	Update(ctx context.Context, product domain.Product) error

	// SoftDelete sets the product's status to trash.
	// Returns domain.ErrNotFound if the code is not stored.
	SoftDelete(ctx context.Context, code domain.ProductCode) error

	// List returns one page of products ordered by code descending.
	// Pages start at 1.
	List(ctx context.Context, page, limit int) ([]domain.Product, error)

	// Count returns the total number of stored products.
	Count(ctx context.Context) (int, error)
}
