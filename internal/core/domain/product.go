package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProductCode is the unique, immutable identifier of a catalog product.
// It is always a positive integer.
type ProductCode int64

// NewProductCode validates and returns a product code.
func NewProductCode(v int64) (ProductCode, error) {
	if v <= 0 {
		return 0, fmt.Errorf("%w: product code must be a positive integer, got %d", ErrInvalidInput, v)
	}
	return ProductCode(v), nil
}

// ParseProductCode parses a decimal product code such as a URL path segment.
// Leading zeros are accepted.
func ParseProductCode(s string) (ProductCode, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: product code must be numeric: %q", ErrInvalidInput, s)
	}
	return NewProductCode(v)
}

// Int64 returns the code as an int64.
func (c ProductCode) Int64() int64 {
	return int64(c)
}

// String returns the decimal representation.
func (c ProductCode) String() string {
	return strconv.FormatInt(int64(c), 10)
}

// ProductStatus is the lifecycle status of a product.
type ProductStatus string

// Available product statuses.
const (
	// ProductStatusDraft is the status of every product created by an import.
	ProductStatusDraft ProductStatus = "draft"

	// ProductStatusPublished marks a product as reviewed and visible.
	ProductStatusPublished ProductStatus = "published"

	// ProductStatusTrash marks a soft-deleted product.
	ProductStatusTrash ProductStatus = "trash"
)

// IsValid returns true if the status is recognised.
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished, ProductStatusTrash:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s ProductStatus) String() string {
	return string(s)
}

// ParseProductStatus validates a status string.
func ParseProductStatus(s string) (ProductStatus, error) {
	status := ProductStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q, valid statuses are draft, published, trash", ErrInvalidInput, s)
	}
	return status, nil
}

// ProductAttributes is the bag of descriptive, independently nullable
// product fields. A nil pointer means the value is unknown.
type ProductAttributes struct {
	URL             *string  `json:"url" yaml:"url"`
	Creator         *string  `json:"creator" yaml:"creator"`
	CreatedT        *int64   `json:"created_t" yaml:"created_t"`
	LastModifiedT   *int64   `json:"last_modified_t" yaml:"last_modified_t"`
	ProductName     *string  `json:"product_name" yaml:"product_name"`
	Quantity        *string  `json:"quantity" yaml:"quantity"`
	Brands          *string  `json:"brands" yaml:"brands"`
	Categories      *string  `json:"categories" yaml:"categories"`
	Labels          *string  `json:"labels" yaml:"labels"`
	Cities          *string  `json:"cities" yaml:"cities"`
	PurchasePlaces  *string  `json:"purchase_places" yaml:"purchase_places"`
	Stores          *string  `json:"stores" yaml:"stores"`
	IngredientsText *string  `json:"ingredients_text" yaml:"ingredients_text"`
	Traces          *string  `json:"traces" yaml:"traces"`
	ServingSize     *string  `json:"serving_size" yaml:"serving_size"`
	ServingQuantity *float64 `json:"serving_quantity" yaml:"serving_quantity"`
	NutriscoreScore *int64   `json:"nutriscore_score" yaml:"nutriscore_score"`
	NutriscoreGrade *string  `json:"nutriscore_grade" yaml:"nutriscore_grade"`
	MainCategory    *string  `json:"main_category" yaml:"main_category"`
	ImageURL        *string  `json:"image_url" yaml:"image_url"`
}

// Overlay returns a copy of a where every non-nil field of patch replaces
// the corresponding field. Fields that are nil in patch are left untouched.
func (a ProductAttributes) Overlay(patch ProductAttributes) ProductAttributes {
	out := a
	overlay(&out.URL, patch.URL)
	overlay(&out.Creator, patch.Creator)
	overlay(&out.CreatedT, patch.CreatedT)
	overlay(&out.LastModifiedT, patch.LastModifiedT)
	overlay(&out.ProductName, patch.ProductName)
	overlay(&out.Quantity, patch.Quantity)
	overlay(&out.Brands, patch.Brands)
	overlay(&out.Categories, patch.Categories)
	overlay(&out.Labels, patch.Labels)
	overlay(&out.Cities, patch.Cities)
	overlay(&out.PurchasePlaces, patch.PurchasePlaces)
	overlay(&out.Stores, patch.Stores)
	overlay(&out.IngredientsText, patch.IngredientsText)
	overlay(&out.Traces, patch.Traces)
	overlay(&out.ServingSize, patch.ServingSize)
	overlay(&out.ServingQuantity, patch.ServingQuantity)
	overlay(&out.NutriscoreScore, patch.NutriscoreScore)
	overlay(&out.NutriscoreGrade, patch.NutriscoreGrade)
	overlay(&out.MainCategory, patch.MainCategory)
	overlay(&out.ImageURL, patch.ImageURL)
	return out
}

// overlay copies the value behind src into a fresh pointer so the result
// never aliases the patch.
func overlay[T any](dst **T, src *T) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
}

// Product is a single catalog entry.
//
// Product is treated as an immutable value: Merge and WithStatus return new
// values and never modify the receiver.
type Product struct {
	Code              ProductCode   `json:"code" yaml:"code"`
	Status            ProductStatus `json:"status" yaml:"status"`
	ImportedAt        time.Time     `json:"imported_t" yaml:"imported_t"`
	ProductAttributes `yaml:",inline"`
}

// NewDraftProduct creates a product in draft status, stamping ImportedAt.
func NewDraftProduct(code ProductCode, attrs ProductAttributes, now time.Time) Product {
	return Product{
		Code:              code,
		Status:            ProductStatusDraft,
		ImportedAt:        now.UTC(),
		ProductAttributes: ProductAttributes{}.Overlay(attrs),
	}
}

// Merge returns a new product whose attributes are p's attributes overlaid
// with the non-nil fields of attrs. Code, Status and ImportedAt are kept.
func (p Product) Merge(attrs ProductAttributes) Product {
	out := p
	out.ProductAttributes = p.ProductAttributes.Overlay(attrs)
	return out
}

// WithStatus returns a copy of p with the given status.
func (p Product) WithStatus(status ProductStatus) Product {
	out := p
	out.Status = status
	return out
}

// Validate checks the invariants every stored product must satisfy.
func (p Product) Validate() error {
	if p.Code <= 0 {
		return fmt.Errorf("%w: product code must be a positive integer", ErrInvalidInput)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, p.Status)
	}
	if p.ImportedAt.IsZero() {
		return fmt.Errorf("%w: imported time is required", ErrInvalidInput)
	}
	return nil
}
