package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

func importTask(now time.Time) *domain.ScheduledTask {
	return &domain.ScheduledTask{
		ID:          domain.TaskIDProductImport,
		Name:        "Product Import",
		Interval:    45 * time.Minute,
		LastRun:     now.Add(-30 * time.Minute),
		NextRun:     now.Add(15 * time.Minute),
		LastSuccess: now.Add(-30 * time.Minute),
		Enabled:     true,
	}
}

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	task := importTask(now)
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	got, err := schedulerStore.GetTask(ctx, domain.TaskIDProductImport)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *task, *got)
}

func TestSchedulerStore_GetTask_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.SchedulerStore().GetTask(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveTask_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	task := importTask(now)
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.Interval = 2 * time.Hour
	task.LastError = "list files: status 503"
	task.Enabled = false
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	got, err := schedulerStore.GetTask(ctx, domain.TaskIDProductImport)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2*time.Hour, got.Interval)
	assert.Equal(t, "list files: status 503", got.LastError)
	assert.False(t, got.Enabled)

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSchedulerStore_SaveTask_Invalid(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.SchedulerStore().SaveTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SchedulerStore().SaveTask(ctx, &domain.ScheduledTask{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, schedulerStore.SaveTask(ctx, importTask(now)))
	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{
		ID: "a-task", Name: "Other", Interval: time.Hour,
	}))

	tasks, err = schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a-task", tasks[0].ID)
	assert.Equal(t, domain.TaskIDProductImport, tasks[1].ID)
}

func TestSchedulerStore_TaskWithZeroTimes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	require.NoError(t, schedulerStore.SaveTask(ctx, &domain.ScheduledTask{
		ID:       domain.TaskIDProductImport,
		Name:     "Product Import",
		Interval: time.Hour,
		Enabled:  true,
	}))

	got, err := schedulerStore.GetTask(ctx, domain.TaskIDProductImport)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.LastRun.IsZero())
	assert.True(t, got.NextRun.IsZero())
	assert.True(t, got.LastSuccess.IsZero())
	assert.Empty(t, got.LastError)
}

func TestSchedulerStore_RecordResult(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	start := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
	ok := &domain.TaskResult{
		TaskID:           domain.TaskIDProductImport,
		RunID:            "run-1",
		StartedAt:        start,
		EndedAt:          start.Add(90 * time.Second),
		Success:          true,
		Error:            "products_03.json: transport error",
		FilesProcessed:   2,
		ProductsImported: 1200,
	}
	failed := &domain.TaskResult{
		TaskID:    domain.TaskIDProductImport,
		StartedAt: start.Add(time.Hour),
		EndedAt:   start.Add(time.Hour + time.Second),
		Error:     "import already running",
	}
	require.NoError(t, schedulerStore.RecordResult(ctx, ok))
	require.NoError(t, schedulerStore.RecordResult(ctx, failed))

	history, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDProductImport, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, *failed, history[0])
	assert.Equal(t, *ok, history[1])
}

func TestSchedulerStore_RecordResult_Invalid(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.SchedulerStore().RecordResult(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.SchedulerStore().RecordResult(ctx, &domain.TaskResult{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_GetTaskHistory_Limit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
			TaskID:           domain.TaskIDProductImport,
			StartedAt:        start.Add(time.Duration(i) * time.Hour),
			EndedAt:          start.Add(time.Duration(i)*time.Hour + time.Minute),
			Success:          true,
			ProductsImported: i,
		}))
	}

	history, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDProductImport, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].ProductsImported)
	assert.Equal(t, 2, history[2].ProductsImported)

	all, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDProductImport, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	other, err := schedulerStore.GetTaskHistory(ctx, "other", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSchedulerStore_PruneHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	schedulerStore := store.SchedulerStore()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, taskID := range []string{domain.TaskIDProductImport, "other"} {
		for i := 0; i < 4; i++ {
			require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
				TaskID:           taskID,
				StartedAt:        start.Add(time.Duration(i) * time.Hour),
				EndedAt:          start.Add(time.Duration(i)*time.Hour + time.Minute),
				ProductsImported: i,
			}))
		}
	}

	require.NoError(t, schedulerStore.PruneHistory(ctx, 2))

	for _, taskID := range []string{domain.TaskIDProductImport, "other"} {
		history, err := schedulerStore.GetTaskHistory(ctx, taskID, 10)
		require.NoError(t, err)
		require.Len(t, history, 2, taskID)
		assert.Equal(t, 3, history[0].ProductsImported)
		assert.Equal(t, 2, history[1].ProductsImported)
	}
}

func TestFormatOptionalTime(t *testing.T) {
	assert.Nil(t, formatOptionalTime(time.Time{}))

	ts := time.Date(2024, 6, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "2024-06-01T10:30:00.000000000Z", formatOptionalTime(ts))
}

func TestParseOptionalTime(t *testing.T) {
	assert.True(t, parseOptionalTime(sql.NullString{}).IsZero())
	assert.True(t, parseOptionalTime(sql.NullString{Valid: true}).IsZero())
	assert.True(t, parseOptionalTime(sql.NullString{String: "garbage", Valid: true}).IsZero())
	assert.Equal(t,
		time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		parseOptionalTime(sql.NullString{String: "2024-06-01T10:30:00.000000000Z", Valid: true}))
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
}
