package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/foodsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/foodsync/internal/core/domain"
	"github.com/custodia-labs/foodsync/internal/core/ports/driven"
	"github.com/custodia-labs/foodsync/internal/logger"
)

// Ensure Store implements the probe interface.
var _ driven.StorageProbe = (*Store)(nil)

// timeLayout is a fixed-width UTC timestamp so that text ordering in SQL
// matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	dbFileName = "foodsync.db"

	// WAL lets the API read while an import writes; busy_timeout covers the
	// short write lock taken by each upsert.
	dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
)

// Store owns the SQLite handle shared by the product store, the run ledger
// and the scheduler store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) foodsync.db in dataDir and applies
// pending migrations. An empty dataDir means ~/.foodsync/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".foodsync", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, dbFileName)
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	ms, err := migrations.Up()
	if err == nil {
		err = s.migrate(context.Background(), ms)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ProductStore returns a ProductStore interface backed by this store.
func (s *Store) ProductStore() driven.ProductStore {
	return &productStore{store: s}
}

// RunLedger returns a RunLedger interface backed by this store.
func (s *Store) RunLedger() driven.RunLedger {
	return &runLedger{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// Probe checks that the database answers reads and accepts writes.
// The write check runs inside a transaction that is always rolled back.
func (s *Store) Probe(ctx context.Context) domain.StorageHealth {
	start := time.Now()
	var p domain.StorageHealth

	if err := s.db.PingContext(ctx); err != nil {
		p.Err = fmt.Errorf("ping: %w", err)
		return p
	}
	p.Connected = true

	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		p.Err = fmt.Errorf("read: %w", err)
		p.Latency = time.Since(start)
		return p
	}
	p.Readable = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		p.Err = fmt.Errorf("write: %w", err)
		p.Latency = time.Since(start)
		return p
	}
	defer tx.Rollback() //nolint:errcheck // rollback is the intended outcome

	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS health_probe (v INTEGER)"); err != nil {
		p.Err = fmt.Errorf("write: %w", err)
	} else if _, err := tx.ExecContext(ctx, "INSERT INTO health_probe (v) VALUES (1)"); err != nil {
		p.Err = fmt.Errorf("write: %w", err)
	} else {
		p.Writable = true
	}

	p.Latency = time.Since(start)
	return p
}

// migrate applies every migration newer than the recorded schema version.
// Each migration and its version row commit together.
func (s *Store) migrate(ctx context.Context, ms []migrations.Migration) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range ms {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		logger.Debug("Applied migration %s", m.Name)
	}
	return nil
}

func (s *Store) apply(ctx context.Context, m migrations.Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.Version, formatTime(time.Now()),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// formatTime formats a timestamp for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp. Zero time is returned on error.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// queryAll runs a query and scans every row with scan. what names the rows
// in error messages.
func queryAll[T any](ctx context.Context, db *sql.DB, what string, scan func(rowScanner) (*T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", what, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", what, err)
	}
	return out, nil
}
