package driven

import (
	"context"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// SchedulerStore keeps the import timetable and its results across restarts.
type SchedulerStore interface {
	// GetTask returns the task with taskID, or nil and no error if none is stored.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns every stored task ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or replaces the task with the same ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordResult appends the outcome of one scheduled import.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns up to limit results for taskID, newest first.
	// A limit below one returns all of them.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps only the newest keep results of each task.
	PruneHistory(ctx context.Context, keep int) error
}
