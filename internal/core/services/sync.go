package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/core/ports/driving"
	"github.com/custodia-labs/foodsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator imports the remote bulk catalog into the product store.
//
// Files are processed one at a time in listing order. A failing record is
// skipped, a failing file is recorded and the run moves on, and only a
// failed listing fails the run as a whole.
type SyncOrchestrator struct {
	source       driven.CatalogSource
	products     driven.ProductStore
	ledger       driven.RunLedger
	limitPerFile int

	now      func() time.Time
	newRunID func() string

	// Status tracking; active is nil when no run is in progress.
	mu     sync.RWMutex
	active *driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// limitPerFile caps the records taken from each remote file; values below
// one fall back to domain.DefaultLimitPerFile.
func NewSyncOrchestrator(
	source driven.CatalogSource,
	products driven.ProductStore,
	ledger driven.RunLedger,
	limitPerFile int,
) *SyncOrchestrator {
	if limitPerFile < 1 {
		limitPerFile = domain.DefaultLimitPerFile
	}
	return &SyncOrchestrator{
		source:       source,
		products:     products,
		ledger:       ledger,
		limitPerFile: limitPerFile,
		now:          time.Now,
		newRunID:     uuid.NewString,
	}
}

// reconcileOutcome is what happened to a single feed record.
type reconcileOutcome int

const (
	reconcileSkipped reconcileOutcome = iota
	reconcileCreated
	reconcileUpdated
)

// fileOutcome is the result of processing one remote file.
// fetched is false when the file never reached reconciliation; err may be
// set even when fetched is true if the ledger entry could not be closed.
type fileOutcome struct {
	fetched  bool
	created  int
	updated  int
	skipped  int
	rejected int
	err      error
}

func (f fileOutcome) imported() int {
	return f.created + f.updated
}

// Run performs one import across every listed remote file.
func (o *SyncOrchestrator) Run(ctx context.Context) (*domain.ImportResult, error) {
	runID := o.newRunID()
	if err := o.begin(runID); err != nil {
		return nil, err
	}
	defer o.end()

	result := &domain.ImportResult{
		RunID:     runID,
		Errors:    []domain.ImportError{},
		StartedAt: o.now().UTC(),
	}

	logger.Section("Product import")
	logger.Info("Starting import run %s", runID)

	files, err := o.source.ListFiles(ctx)
	if err != nil {
		logger.Error("Import run %s: list files: %v", runID, err)
		result.Success = false
		result.Errors = append(result.Errors, domain.ImportError{Error: err.Error()})
		result.EndedAt = o.now().UTC()
		return result, nil
	}
	result.Success = true
	logger.Info("Listing returned %d files", len(files))

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("Import run %s interrupted before %s: %v", runID, name, err)
			result.Errors = append(result.Errors, domain.ImportError{
				Error: fmt.Sprintf("import interrupted: %v", err),
			})
			break
		}

		o.updateStatus(func(s *driving.SyncStatus) { s.CurrentFile = name })
		out := o.processFile(ctx, runID, name)

		if out.fetched {
			result.FilesProcessed++
			result.RecordsImported += out.imported()
			result.RecordsCreated += out.created
			result.RecordsUpdated += out.updated
			result.RecordsSkipped += out.skipped
			result.RecordsRejected += out.rejected
		}
		if out.err != nil {
			logger.Warn("File %s: %v", name, out.err)
			result.Errors = append(result.Errors, domain.ImportError{FileName: name, Error: out.err.Error()})
		}

		o.updateStatus(func(s *driving.SyncStatus) {
			s.FilesProcessed = result.FilesProcessed
			s.RecordsImported = result.RecordsImported
			s.ErrorCount = len(result.Errors)
		})
	}

	result.EndedAt = o.now().UTC()
	logger.Info("Import run %s complete: %d files, %d products, %d errors",
		runID, result.FilesProcessed, result.RecordsImported, len(result.Errors))
	return result, nil
}

// processFile runs the ledger lifecycle around fetching and reconciling one file.
func (o *SyncOrchestrator) processFile(ctx context.Context, runID, name string) fileOutcome {
	entry := domain.StartRun(runID, name, o.now())
	id, err := o.ledger.Append(ctx, entry)
	if err != nil {
		return fileOutcome{err: fmt.Errorf("open run entry: %w", err)}
	}
	entry.ID = id

	logger.Debug("Fetching %s (limit %d)", name, o.limitPerFile)
	records, err := o.source.FetchRecords(ctx, name, o.limitPerFile)
	if err != nil {
		failed, terr := entry.Fail(err.Error(), o.now())
		if terr == nil {
			terr = o.ledger.UpdateByID(ctx, failed)
		}
		if terr != nil {
			logger.Error("File %s: close run entry %d: %v", name, id, terr)
		}
		return fileOutcome{err: err}
	}

	out := fileOutcome{fetched: true}
	for i, rec := range records {
		outcome, err := o.reconcile(ctx, rec)
		if err != nil {
			out.rejected++
			logger.Warn("Failed to import record %d from %s: %v", i, name, err)
			continue
		}
		switch outcome {
		case reconcileCreated:
			out.created++
		case reconcileUpdated:
			out.updated++
		case reconcileSkipped:
			out.skipped++
		}
	}

	done, err := entry.Complete(out.imported(), o.now())
	if err == nil {
		err = o.ledger.UpdateByID(ctx, done)
	}
	if err != nil {
		out.err = fmt.Errorf("close run entry: %w", err)
	}

	logger.Debug("File %s: %d created, %d updated, %d skipped, %d rejected",
		name, out.created, out.updated, out.skipped, out.rejected)
	return out
}

// reconcile creates or updates the product a feed record describes.
// Records without an identifier are skipped without error.
func (o *SyncOrchestrator) reconcile(ctx context.Context, rec domain.FeedRecord) (reconcileOutcome, error) {
	if !rec.HasCode() {
		return reconcileSkipped, nil
	}

	code, err := rec.Code()
	if err != nil {
		return reconcileSkipped, err
	}
	attrs, err := rec.Attributes()
	if err != nil {
		return reconcileSkipped, fmt.Errorf("product %s: %w", code, err)
	}

	exists, err := o.products.Exists(ctx, code)
	if err != nil {
		return reconcileSkipped, fmt.Errorf("check product %s: %w", code, err)
	}

	if !exists {
		product := domain.NewDraftProduct(code, attrs, o.now())
		if err := o.products.Insert(ctx, product); err != nil {
			return reconcileSkipped, fmt.Errorf("insert product %s: %w", code, err)
		}
		return reconcileCreated, nil
	}

	stored, err := o.products.FindByCode(ctx, code)
	if err != nil {
		return reconcileSkipped, fmt.Errorf("load product %s: %w", code, err)
	}
	if err := o.products.Update(ctx, stored.Merge(attrs)); err != nil {
		return reconcileSkipped, fmt.Errorf("update product %s: %w", code, err)
	}
	return reconcileUpdated, nil
}

// LastRunStartedAt returns the start time of the most recent ledger entry.
func (o *SyncOrchestrator) LastRunStartedAt(ctx context.Context) (*time.Time, error) {
	entry, err := o.ledger.MostRecent(ctx)
	if err != nil {
		return nil, fmt.Errorf("most recent run: %w", err)
	}
	if entry == nil {
		return nil, nil
	}
	started := entry.StartedAt
	return &started, nil
}

// Status returns the progress of the active run.
func (o *SyncOrchestrator) Status(_ context.Context) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active == nil {
		return &driving.SyncStatus{Running: false}, nil
	}
	// Return a copy to avoid race conditions
	status := *o.active
	return &status, nil
}

// begin marks a run as active. Only one run may be active at a time.
func (o *SyncOrchestrator) begin(runID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != nil {
		return fmt.Errorf("%w: run %s is active", domain.ErrSyncInProgress, o.active.RunID)
	}
	o.active = &driving.SyncStatus{RunID: runID, Running: true}
	return nil
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

func (o *SyncOrchestrator) updateStatus(fn func(*driving.SyncStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		fn(o.active)
	}
}
