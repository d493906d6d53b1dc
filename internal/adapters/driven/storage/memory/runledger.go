package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
)

// Ensure RunLedger implements the interface.
var _ driven.RunLedger = (*RunLedger)(nil)

// RunLedger is an in-memory implementation of driven.RunLedger.
// Identifiers are assigned sequentially starting at 1.
type RunLedger struct {
	mu      sync.RWMutex
	nextID  int64
	entries []domain.RunEntry
}

// NewRunLedger creates a new in-memory run ledger.
func NewRunLedger() *RunLedger {
	return &RunLedger{nextID: 1}
}

// Append stores a new entry and assigns its ID.
func (l *RunLedger) Append(_ context.Context, entry domain.RunEntry) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.ID = l.nextID
	l.nextID++
	l.entries = append(l.entries, entry)
	return entry.ID, nil
}

// UpdateByID overwrites the entry with the same ID.
func (l *RunLedger) UpdateByID(_ context.Context, entry domain.RunEntry) error {
	if entry.ID == 0 {
		return domain.ErrNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].ID == entry.ID {
			l.entries[i] = entry
			return nil
		}
	}
	return domain.ErrNotFound
}

// MostRecent returns the entry with the latest StartedAt.
// Ties go to the entry appended last.
func (l *RunLedger) MostRecent(_ context.Context) (*domain.RunEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return nil, nil
	}
	latest := l.entries[0]
	for _, e := range l.entries[1:] {
		if !e.StartedAt.Before(latest.StartedAt) {
			latest = e
		}
	}
	return &latest, nil
}

// List returns up to limit entries, most recently started first.
func (l *RunLedger) List(_ context.Context, limit int) ([]domain.RunEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.RunEntry, len(l.entries))
	copy(out, l.entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Entries returns every entry in append order.
func (l *RunLedger) Entries() []domain.RunEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.RunEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
