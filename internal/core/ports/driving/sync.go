package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/foodsync/internal/core/domain"
)

// SyncOrchestrator runs catalog imports from the remote bulk source.
type SyncOrchestrator interface {
	// Run performs one import across every listed remote file.
	// A failed listing is reported through the result, not the error;
	// the error is non-nil only when the run could not start at all
	// (domain.ErrSyncInProgress).
	Run(ctx context.Context) (*domain.ImportResult, error)

	// LastRunStartedAt returns the start time of the most recent ledger
	// entry, or nil if no import has ever run.
	LastRunStartedAt(ctx context.Context) (*time.Time, error)

	// Status returns the progress of the active run, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of an import run.
type SyncStatus struct {
	// RunID identifies the active run. Empty when idle.
	RunID string

	// Running indicates if an import is currently in progress.
	Running bool

	// CurrentFile is the remote file being processed.
	CurrentFile string

	// FilesProcessed is the count of files fetched so far.
	FilesProcessed int

	// RecordsImported is the count of records created or updated so far.
	RecordsImported int

	// ErrorCount is the number of file errors encountered.
	ErrorCount int
}
