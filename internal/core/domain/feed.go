package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FeedCodeKey is the feed key carrying the reconciliation identifier.
const FeedCodeKey = "code"

// FeedRecord is one flat key/value object from a remote bulk file.
// Values are loosely typed; numbers arrive as json.Number when the
// decoder is configured with UseNumber, or as float64 otherwise.
type FeedRecord map[string]any

// HasCode reports whether the record carries a non-null identifier field.
// Records without one are malformed and skipped by the importer.
func (r FeedRecord) HasCode() bool {
	v, ok := r[FeedCodeKey]
	return ok && v != nil
}

// Code resolves the record's product code.
//
// Integral numbers and decimal strings (leading zeros allowed) are accepted.
// Fractional numbers are truncated toward zero. Anything else, including a
// non-positive result, is an ErrInvalidInput.
func (r FeedRecord) Code() (ProductCode, error) {
	v, ok := r[FeedCodeKey]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: record has no %q field", ErrInvalidInput, FeedCodeKey)
	}
	n, err := coerceInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrInvalidInput, FeedCodeKey, err)
	}
	return NewProductCode(n)
}

// Attributes extracts the recognised product attributes. Absent or null
// keys stay nil so that Product.Merge leaves the stored value alone.
func (r FeedRecord) Attributes() (ProductAttributes, error) {
	var a ProductAttributes
	var err error

	strs := []struct {
		key string
		dst **string
	}{
		{"url", &a.URL},
		{"creator", &a.Creator},
		{"quantity", &a.Quantity},
		{"brands", &a.Brands},
		{"categories", &a.Categories},
		{"labels", &a.Labels},
		{"cities", &a.Cities},
		{"purchase_places", &a.PurchasePlaces},
		{"stores", &a.Stores},
		{"ingredients_text", &a.IngredientsText},
		{"traces", &a.Traces},
		{"serving_size", &a.ServingSize},
		{"nutriscore_grade", &a.NutriscoreGrade},
		{"main_category", &a.MainCategory},
		{"image_url", &a.ImageURL},
	}
	for _, f := range strs {
		if *f.dst, err = r.stringField(f.key); err != nil {
			return ProductAttributes{}, err
		}
	}

	// "name" is accepted as an alias; "product_name" wins when both are set.
	if a.ProductName, err = r.stringField("product_name"); err != nil {
		return ProductAttributes{}, err
	}
	if a.ProductName == nil {
		if a.ProductName, err = r.stringField("name"); err != nil {
			return ProductAttributes{}, err
		}
	}

	ints := []struct {
		key string
		dst **int64
	}{
		{"created_t", &a.CreatedT},
		{"last_modified_t", &a.LastModifiedT},
		{"nutriscore_score", &a.NutriscoreScore},
	}
	for _, f := range ints {
		if *f.dst, err = r.intField(f.key); err != nil {
			return ProductAttributes{}, err
		}
	}

	if a.ServingQuantity, err = r.floatField("serving_quantity"); err != nil {
		return ProductAttributes{}, err
	}

	return a, nil
}

func (r FeedRecord) stringField(key string) (*string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return nil, fmt.Errorf("%w: field %q: expected string, got %T", ErrInvalidInput, key, v)
	}
	return &s, nil
}

func (r FeedRecord) intField(key string) (*int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := coerceInt(v)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidInput, key, err)
	}
	return &n, nil
}

func (r FeedRecord) floatField(key string) (*float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	f, err := coerceFloat(v)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidInput, key, err)
	}
	return &f, nil
}

// coerceInt converts a loosely typed feed value to an int64.
// Fractional values are truncated toward zero.
func coerceInt(v any) (int64, error) {
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t.String())
		}
		return truncate(f)
	case float64:
		return truncate(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return truncate(f)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("number out of range: %v", f)
	}
	return int64(f), nil
}

func coerceFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t.String())
		}
		f = n
	case float64:
		f = t
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		f = n
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("number out of range: %v", f)
	}
	return f, nil
}
