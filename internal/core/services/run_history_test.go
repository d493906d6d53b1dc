package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/domain"
)

func TestRunHistoryService_Recent(t *testing.T) {
	ledger := memory.NewRunLedger()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		_, err := ledger.Append(ctx, domain.StartRun("r", "f.json", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	service := NewRunHistoryService(ledger)

	entries, err := service.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, int64(30), entries[0].ID)

	entries, err = service.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, domain.DefaultPageSize)
}
