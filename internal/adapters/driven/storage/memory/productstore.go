package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
)

// Ensure ProductStore implements the interface.
var _ driven.ProductStore = (*ProductStore)(nil)

// ProductStore is an in-memory implementation of driven.ProductStore.
type ProductStore struct {
	mu       sync.RWMutex
	products map[domain.ProductCode]domain.Product
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[domain.ProductCode]domain.Product),
	}
}

// Exists reports whether a product with the code is stored.
func (s *ProductStore) Exists(_ context.Context, code domain.ProductCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.products[code]
	return ok, nil
}

// FindByCode retrieves a product by code.
func (s *ProductStore) FindByCode(_ context.Context, code domain.ProductCode) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &product, nil
}

// Insert stores a new product.
func (s *ProductStore) Insert(_ context.Context, product domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.Code]; ok {
		return domain.ErrAlreadyExists
	}
	s.products[product.Code] = product
	return nil
}

// Update overwrites a stored product. ImportedAt is never changed.
func (s *ProductStore) Update(_ context.Context, product domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.products[product.Code]
	if !ok {
		return domain.ErrNotFound
	}
	product.ImportedAt = stored.ImportedAt
	s.products[product.Code] = product
	return nil
}

// SoftDelete moves a product to trash.
func (s *ProductStore) SoftDelete(_ context.Context, code domain.ProductCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.products[code]
	if !ok {
		return domain.ErrNotFound
	}
	s.products[code] = stored.WithStatus(domain.ProductStatusTrash)
	return nil
}

// List returns one page of products ordered by code descending.
func (s *ProductStore) List(_ context.Context, page, limit int) ([]domain.Product, error) {
	if page < 1 || limit < 1 {
		return nil, domain.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code > all[j].Code })

	offset := (page - 1) * limit
	if offset >= len(all) {
		return []domain.Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Count returns the number of stored products.
func (s *ProductStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}
