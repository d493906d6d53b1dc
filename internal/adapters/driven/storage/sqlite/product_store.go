package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
)

// productColumns is the column order used by every product query.
const productColumns = `code, status, imported_t, url, creator, created_t, last_modified_t,
	product_name, quantity, brands, categories, labels, cities, purchase_places,
	stores, ingredients_text, traces, serving_size, serving_quantity,
	nutriscore_score, nutriscore_grade, main_category, image_url`

// productStore implements driven.ProductStore.
type productStore struct {
	store *Store
}

var _ driven.ProductStore = (*productStore)(nil)

// Exists reports whether a product with the code is stored.
func (s *productStore) Exists(ctx context.Context, code domain.ProductCode) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM products WHERE code = ?", code.Int64()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking product: %w", err)
	}
	return true, nil
}

// FindByCode retrieves a product by code.
func (s *productStore) FindByCode(ctx context.Context, code domain.ProductCode) (*domain.Product, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE code = ?", code.Int64())

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Insert stores a new product.
func (s *productStore) Insert(ctx context.Context, product domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 23), ", ")
	args := append([]any{
		product.Code.Int64(), product.Status.String(), formatTime(product.ImportedAt),
	}, attributeArgs(product.ProductAttributes)...)

	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES ("+placeholders+")", args...)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: product %s", domain.ErrAlreadyExists, product.Code)
		}
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

// Update overwrites every attribute and the status of a stored product.
// imported_t is never changed.
func (s *productStore) Update(ctx context.Context, product domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	args := append([]any{product.Status.String()}, attributeArgs(product.ProductAttributes)...)
	args = append(args, product.Code.Int64())

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE products SET
			status = ?,
			url = ?, creator = ?, created_t = ?, last_modified_t = ?,
			product_name = ?, quantity = ?, brands = ?, categories = ?, labels = ?,
			cities = ?, purchase_places = ?, stores = ?, ingredients_text = ?,
			traces = ?, serving_size = ?, serving_quantity = ?,
			nutriscore_score = ?, nutriscore_grade = ?, main_category = ?, image_url = ?
		WHERE code = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return requireAffected(res, "product")
}

// SoftDelete moves a product to trash.
func (s *productStore) SoftDelete(ctx context.Context, code domain.ProductCode) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE products SET status = ? WHERE code = ?",
		domain.ProductStatusTrash.String(), code.Int64())
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return requireAffected(res, "product")
}

// List returns one page of products ordered by code descending.
func (s *productStore) List(ctx context.Context, page, limit int) ([]domain.Product, error) {
	if page < 1 || limit < 1 {
		return nil, domain.ErrInvalidInput
	}

	return queryAll(ctx, s.store.db, "products", scanProduct,
		"SELECT "+productColumns+" FROM products ORDER BY code DESC LIMIT ? OFFSET ?",
		limit, (page-1)*limit)
}

// Count returns the number of stored products.
func (s *productStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct scans a product row selected with productColumns.
func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p                                   domain.Product
		code                                int64
		status, importedAt                  string
		url, creator, name, quantity        sql.NullString
		brands, categories, labels, cities  sql.NullString
		purchasePlaces, stores, ingredients sql.NullString
		traces, servingSize, grade          sql.NullString
		mainCategory, imageURL              sql.NullString
		createdT, lastModifiedT, score      sql.NullInt64
		servingQuantity                     sql.NullFloat64
	)

	err := row.Scan(&code, &status, &importedAt, &url, &creator, &createdT, &lastModifiedT,
		&name, &quantity, &brands, &categories, &labels, &cities, &purchasePlaces,
		&stores, &ingredients, &traces, &servingSize, &servingQuantity,
		&score, &grade, &mainCategory, &imageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}

	p.Code = domain.ProductCode(code)
	p.Status = domain.ProductStatus(status)
	p.ImportedAt = parseTime(importedAt)
	p.URL = stringPtr(url)
	p.Creator = stringPtr(creator)
	p.CreatedT = int64Ptr(createdT)
	p.LastModifiedT = int64Ptr(lastModifiedT)
	p.ProductName = stringPtr(name)
	p.Quantity = stringPtr(quantity)
	p.Brands = stringPtr(brands)
	p.Categories = stringPtr(categories)
	p.Labels = stringPtr(labels)
	p.Cities = stringPtr(cities)
	p.PurchasePlaces = stringPtr(purchasePlaces)
	p.Stores = stringPtr(stores)
	p.IngredientsText = stringPtr(ingredients)
	p.Traces = stringPtr(traces)
	p.ServingSize = stringPtr(servingSize)
	p.ServingQuantity = float64Ptr(servingQuantity)
	p.NutriscoreScore = int64Ptr(score)
	p.NutriscoreGrade = stringPtr(grade)
	p.MainCategory = stringPtr(mainCategory)
	p.ImageURL = stringPtr(imageURL)

	return &p, nil
}

// attributeArgs returns the attribute values in productColumns order,
// starting at url.
func attributeArgs(a domain.ProductAttributes) []any {
	return []any{
		nullable(a.URL), nullable(a.Creator), nullable(a.CreatedT), nullable(a.LastModifiedT),
		nullable(a.ProductName), nullable(a.Quantity), nullable(a.Brands), nullable(a.Categories),
		nullable(a.Labels), nullable(a.Cities), nullable(a.PurchasePlaces), nullable(a.Stores),
		nullable(a.IngredientsText), nullable(a.Traces), nullable(a.ServingSize),
		nullable(a.ServingQuantity), nullable(a.NutriscoreScore), nullable(a.NutriscoreGrade),
		nullable(a.MainCategory), nullable(a.ImageURL),
	}
}

// nullable returns nil for a nil pointer, otherwise the pointed-to value.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func float64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// requireAffected maps a zero-row write to domain.ErrNotFound.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s rows: %w", what, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isConstraintError reports whether err is a SQLite constraint violation.
func isConstraintError(err error) bool {
	return strings.Contains(err.Error(), "constraint failed")
}
