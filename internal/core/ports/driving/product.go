package driving

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// ProductService is the read and edit surface of the catalog.
type ProductService interface {
	// Get retrieves a product by code.
	Get(ctx context.Context, code domain.ProductCode) (*domain.Product, error)

	// List returns one page of products, most recent codes first.
	List(ctx context.Context, page, limit int) (*ProductPage, error)

	// Update applies a partial update. Nil attributes are left untouched;
	// a nil status keeps the current status.
	Update(ctx context.Context, code domain.ProductCode, patch ProductPatch) (*domain.Product, error)

	// Delete moves a product to trash.
	Delete(ctx context.Context, code domain.ProductCode) error
}

// ProductPatch carries an edit to a product.
type ProductPatch struct {
	Attributes domain.ProductAttributes
	Status     *domain.ProductStatus
}

// ProductPage is one page of products.
type ProductPage struct {
	Products   []domain.Product
	Page       int
	Limit      int
	Total      int
	TotalPages int
}
