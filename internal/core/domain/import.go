package domain

import (
	"errors"
	"time"
)

// ImportError is one entry in an import run's error list.
// FileName is empty for run-level errors such as a failed listing.
type ImportError struct {
	FileName string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Error    string `json:"error" yaml:"error"`
}

// ImportResult is the aggregate outcome of one import run.
type ImportResult struct {
	// RunID identifies the run; ledger entries carry the same value.
	RunID string `json:"run_id" yaml:"run_id"`

	// Success is false only when the listing step failed.
	Success bool `json:"success" yaml:"success"`

	// FilesProcessed counts files whose fetch succeeded.
	FilesProcessed int `json:"files_processed" yaml:"files_processed"`

	// RecordsImported counts records created or updated across all files.
	RecordsImported int `json:"products_imported" yaml:"products_imported"`

	// Breakdown of RecordsImported plus the records that were not imported.
	// Skipped records had no identifier; rejected records failed validation
	// or storage.
	RecordsCreated  int `json:"products_created" yaml:"products_created"`
	RecordsUpdated  int `json:"products_updated" yaml:"products_updated"`
	RecordsSkipped  int `json:"records_skipped" yaml:"records_skipped"`
	RecordsRejected int `json:"records_rejected" yaml:"records_rejected"`

	// Errors lists per-file failures in listing order.
	Errors []ImportError `json:"errors" yaml:"errors"`

	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	EndedAt   time.Time `json:"ended_at" yaml:"ended_at"`
}

// Err joins the recorded errors into a single error, or nil if there are none.
func (r *ImportResult) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.FileName == "" {
			errs = append(errs, errors.New(e.Error))
			continue
		}
		errs = append(errs, errors.New(e.FileName+": "+e.Error))
	}
	return errors.Join(errs...)
}
