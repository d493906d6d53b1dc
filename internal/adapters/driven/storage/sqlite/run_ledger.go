package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
)

// runLedger implements driven.RunLedger on the import_history table.
type runLedger struct {
	store *Store
}

var _ driven.RunLedger = (*runLedger)(nil)

const runEntryColumns = `id, run_id, filename, products_imported, started_at, completed_at, status, error_message`

// Append persists a new entry and returns its row ID.
func (l *runLedger) Append(ctx context.Context, entry domain.RunEntry) (int64, error) {
	res, err := l.store.db.ExecContext(ctx, `
		INSERT INTO import_history (run_id, filename, products_imported, started_at, completed_at, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.RunID, entry.SourceName, entry.RecordsImported,
		formatTime(entry.StartedAt), formatNullableTimePtr(entry.CompletedAt),
		entry.State.String(), nullString(entry.ErrorDetail))
	if err != nil {
		return 0, fmt.Errorf("appending run entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run entry id: %w", err)
	}
	return id, nil
}

// UpdateByID overwrites the mutable fields of an entry.
// started_at and run_id are fixed at append time.
func (l *runLedger) UpdateByID(ctx context.Context, entry domain.RunEntry) error {
	if entry.ID == 0 {
		return domain.ErrNotFound
	}

	res, err := l.store.db.ExecContext(ctx, `
		UPDATE import_history SET
			filename = ?, products_imported = ?, completed_at = ?, status = ?, error_message = ?
		WHERE id = ?
	`, entry.SourceName, entry.RecordsImported, formatNullableTimePtr(entry.CompletedAt),
		entry.State.String(), nullString(entry.ErrorDetail), entry.ID)
	if err != nil {
		return fmt.Errorf("updating run entry: %w", err)
	}
	return requireAffected(res, "run entry")
}

// MostRecent returns the entry with the latest start time, or nil if empty.
func (l *runLedger) MostRecent(ctx context.Context) (*domain.RunEntry, error) {
	row := l.store.db.QueryRowContext(ctx,
		"SELECT "+runEntryColumns+" FROM import_history ORDER BY started_at DESC, id DESC LIMIT 1")

	entry, err := scanRunEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns up to limit entries, most recently started first.
func (l *runLedger) List(ctx context.Context, limit int) ([]domain.RunEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	return queryAll(ctx, l.store.db, "run entries", scanRunEntry,
		"SELECT "+runEntryColumns+" FROM import_history ORDER BY started_at DESC, id DESC LIMIT ?", limit)
}

// scanRunEntry scans a row selected with runEntryColumns.
func scanRunEntry(row rowScanner) (*domain.RunEntry, error) {
	var e domain.RunEntry
	var startedAt, state string
	var completedAt, errMsg sql.NullString

	if err := row.Scan(&e.ID, &e.RunID, &e.SourceName, &e.RecordsImported,
		&startedAt, &completedAt, &state, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run entry: %w", err)
	}

	e.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		e.CompletedAt = &t
	}
	e.State = domain.RunState(state)
	if errMsg.Valid {
		e.ErrorDetail = errMsg.String
	}

	return &e, nil
}

// formatNullableTimePtr formats t for storage, or returns nil when t is nil.
func formatNullableTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
