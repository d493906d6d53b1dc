package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/services"
)

func seedRuns(t *testing.T, files ...string) {
	t.Helper()
	ledger := memory.NewRunLedger()
	ctx := context.Background()
	for i, name := range files {
		entry := domain.StartRun("run-1", name, time.Now().Add(time.Duration(i)*time.Second))
		id, err := ledger.Append(ctx, entry)
		require.NoError(t, err)
		entry.ID = id
		done, err := entry.Complete(10*(i+1), entry.StartedAt.Add(time.Second))
		require.NoError(t, err)
		require.NoError(t, ledger.UpdateByID(ctx, done))
	}
	useServices(t, &Services{Runs: services.NewRunHistoryService(ledger)})
}

func TestRunsCmd(t *testing.T) {
	seedRuns(t, "products_01.json", "products_02.json")

	out, err := execute("runs")

	require.NoError(t, err)
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "products_01.json")
	assert.Contains(t, out, "products_02.json")
	assert.Contains(t, out, "completed")
}

func TestRunsCmd_Limit(t *testing.T) {
	seedRuns(t, "products_01.json", "products_02.json", "products_03.json")

	out, err := execute("runs", "-n", "1", "-o", "json")
	require.NoError(t, err)

	var got []runEntryView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "products_03.json", got[0].Filename)
	assert.Equal(t, 30, got[0].ProductsImported)
}

func TestRunsCmd_Empty(t *testing.T) {
	seedRuns(t)

	out, err := execute("runs")

	require.NoError(t, err)
	assert.Equal(t, "No imports recorded yet.\n", out)
}

func TestRunsCmd_NotConfigured(t *testing.T) {
	useServices(t, &Services{})

	_, err := execute("runs")

	assert.EqualError(t, err, "run history not configured")
}
