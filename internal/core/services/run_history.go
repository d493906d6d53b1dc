package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
)

// Ensure RunHistoryService implements the interface.
var _ driving.RunHistory = (*RunHistoryService)(nil)

// RunHistoryService reports on the import ledger.
type RunHistoryService struct {
	ledger driven.RunLedger
}

// NewRunHistoryService creates a new run history service.
func NewRunHistoryService(ledger driven.RunLedger) *RunHistoryService {
	return &RunHistoryService{ledger: ledger}
}

// Recent returns up to limit entries, most recent first.
// Non-positive limits select domain.DefaultPageSize.
func (s *RunHistoryService) Recent(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	if limit <= 0 {
		limit = domain.DefaultPageSize
	}
	if limit > domain.DefaultRunHistoryRetained {
		limit = domain.DefaultRunHistoryRetained
	}
	entries, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return entries, nil
}
