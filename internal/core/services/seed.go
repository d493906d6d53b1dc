package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
	"github.com/custodia-labs/foodsync/internal/logger"
)

// Ensure Seeder implements the interface.
var _ driving.Seeder = (*Seeder)(nil)

// Seeder inserts sample products. Stored products are left untouched and
// nothing is written to the run ledger.
type Seeder struct {
	products driven.ProductStore
	now      func() time.Time
}

// NewSeeder creates a new seeder.
func NewSeeder(products driven.ProductStore) *Seeder {
	return &Seeder{products: products, now: time.Now}
}

// Seed inserts each record as a draft product. A failing record is reported
// and the rest are still loaded; only a cancelled context stops the loop.
func (s *Seeder) Seed(ctx context.Context, records []domain.FeedRecord) (*domain.SeedReport, error) {
	report := &domain.SeedReport{Outcomes: []domain.SeedOutcome{}}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := s.seed(ctx, rec)
		if out.Status == domain.SeedFailed {
			logger.Warn("Seed record failed: %s", out.Error)
		}
		report.Add(out)
	}
	logger.Info("Seeded %d products (%d existing, %d failed)", report.Imported, report.Existing, report.Failed)
	return report, nil
}

func (s *Seeder) seed(ctx context.Context, rec domain.FeedRecord) domain.SeedOutcome {
	if !rec.HasCode() {
		return domain.SeedOutcome{Status: domain.SeedSkipped}
	}
	code, err := rec.Code()
	if err != nil {
		return domain.SeedOutcome{Status: domain.SeedFailed, Error: err.Error()}
	}
	out := domain.SeedOutcome{Code: code}

	attrs, err := rec.Attributes()
	if err != nil {
		out.Status, out.Error = domain.SeedFailed, err.Error()
		return out
	}
	if attrs.ProductName != nil {
		out.Name = *attrs.ProductName
	}

	exists, err := s.products.Exists(ctx, code)
	if err != nil {
		out.Status, out.Error = domain.SeedFailed, err.Error()
		return out
	}
	if exists {
		out.Status = domain.SeedExisting
		return out
	}

	err = s.products.Insert(ctx, domain.NewDraftProduct(code, attrs, s.now()))
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		out.Status = domain.SeedExisting
	case err != nil:
		out.Status, out.Error = domain.SeedFailed, err.Error()
	default:
		out.Status = domain.SeedImported
	}
	return out
}
