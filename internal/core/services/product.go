package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// Ensure ProductService implements the interface.
var _ driving.ProductService = (*ProductService)(nil)

// ProductService reads and edits stored products.
type ProductService struct {
	products driven.ProductStore
}

// NewProductService creates a new product service.
func NewProductService(products driven.ProductStore) *ProductService {
	return &ProductService{products: products}
}

// Get retrieves a product by code.
func (s *ProductService) Get(ctx context.Context, code domain.ProductCode) (*domain.Product, error) {
	if code <= 0 {
		return nil, fmt.Errorf("%w: product code must be a positive integer", domain.ErrInvalidInput)
	}
	return s.products.FindByCode(ctx, code)
}

// List returns one page of products. A page below 1 is treated as 1 and
// the limit is clamped to [1, domain.MaxPageSize]; zero selects the default.
func (s *ProductService) List(ctx context.Context, page, limit int) (*driving.ProductPage, error) {
	page, limit = ClampPage(page, limit)

	total, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	products, err := s.products.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return &driving.ProductPage{
		Products:   products,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Update applies a partial update through the same merge the importer uses.
func (s *ProductService) Update(
	ctx context.Context,
	code domain.ProductCode,
	patch driving.ProductPatch,
) (*domain.Product, error) {
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, *patch.Status)
	}

	stored, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	updated := stored.Merge(patch.Attributes)
	if patch.Status != nil {
		updated = updated.WithStatus(*patch.Status)
	}
	if err := s.products.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update product %s: %w", code, err)
	}
	return &updated, nil
}

// Delete moves a product to trash.
func (s *ProductService) Delete(ctx context.Context, code domain.ProductCode) error {
	if code <= 0 {
		return fmt.Errorf("%w: product code must be a positive integer", domain.ErrInvalidInput)
	}
	return s.products.SoftDelete(ctx, code)
}

// ClampPage normalises pagination parameters.
func ClampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit == 0:
		limit = domain.DefaultPageSize
	case limit < 1:
		limit = 1
	case limit > domain.MaxPageSize:
		limit = domain.MaxPageSize
	}
	return page, limit
}
