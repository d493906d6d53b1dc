package domain

import (
	"fmt"
	"time"
)

// RunState is the state of a single file-processing attempt.
type RunState string

// Run states. Running is the only initial state; completed and failed are terminal.
const (
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// IsValid returns true if the state is recognised.
func (s RunState) IsValid() bool {
	switch s {
	case RunStateRunning, RunStateCompleted, RunStateFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for completed and failed.
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateFailed
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// RunEntry is the ledger record of one attempt to process one remote file.
type RunEntry struct {
	// ID is assigned by the ledger on Append and required for updates.
	ID int64

	// RunID groups the entries written by the same import run.
	RunID string

	// SourceName is the remote file name that was processed.
	SourceName string

	// RecordsImported counts records created or updated in this attempt.
	RecordsImported int

	// StartedAt is set at creation and never changes.
	StartedAt time.Time

	// CompletedAt is nil while running.
	CompletedAt *time.Time

	// State is running, completed or failed.
	State RunState

	// ErrorDetail is set only when State is failed.
	ErrorDetail string
}

// StartRun opens a running ledger entry for a file.
func StartRun(runID, sourceName string, now time.Time) RunEntry {
	return RunEntry{
		RunID:      runID,
		SourceName: sourceName,
		StartedAt:  now.UTC(),
		State:      RunStateRunning,
	}
}

// Complete returns the entry transitioned to completed with the final count.
func (e RunEntry) Complete(recordsImported int, now time.Time) (RunEntry, error) {
	if e.State != RunStateRunning {
		return e, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.State, RunStateCompleted)
	}
	done := now.UTC()
	out := e
	out.RecordsImported = recordsImported
	out.CompletedAt = &done
	out.State = RunStateCompleted
	return out, nil
}

// Fail returns the entry transitioned to failed with the error text.
func (e RunEntry) Fail(detail string, now time.Time) (RunEntry, error) {
	if e.State != RunStateRunning {
		return e, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.State, RunStateFailed)
	}
	done := now.UTC()
	out := e
	out.CompletedAt = &done
	out.State = RunStateFailed
	out.ErrorDetail = detail
	return out, nil
}

// Duration returns how long the attempt took, or zero while running.
func (e RunEntry) Duration() time.Duration {
	if e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}
