// Package catalog persists the canonical item catalog, the per-item stock
// snapshots and the movement ledger in a single SQLite database. All import
// mutations flow through one Tx per run so that a run either commits in full
// or leaves no trace (dry-run and hard failures both roll back).
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "dolce-almacen/pkg/errors"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the catalog database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeStoreOpenFailed, "open", err).
			WithContext("db_path", path)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, apperrors.CatalogError(apperrors.CodeStoreOpenFailed, pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path backing this store.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			unit TEXT NOT NULL,
			default_supplier TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_normalized_name ON items(normalized_name)`,
		`CREATE TABLE IF NOT EXISTS aliases (
			normalized_key TEXT PRIMARY KEY,
			item_id INTEGER NOT NULL REFERENCES items(id),
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			item_id INTEGER PRIMARY KEY REFERENCES items(id),
			quantity TEXT NOT NULL,
			reorder_point TEXT NOT NULL,
			min_stock TEXT NOT NULL,
			max_stock TEXT NOT NULL,
			avg_inventory TEXT NOT NULL,
			lead_time_days INTEGER NOT NULL,
			avg_daily_consumption TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fingerprint TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			item_id INTEGER NOT NULL REFERENCES items(id),
			quantity TEXT NOT NULL,
			moved_at TEXT NOT NULL,
			reference TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_item ON ledger(item_id)`,
	}
	for _, stmt := range schema {
		if err := retryOnBusy(ctx, func() error {
			_, err := s.db.ExecContext(ctx, stmt)
			return err
		}); err != nil {
			return apperrors.CatalogError(apperrors.CodeStoreOpenFailed, "init schema", err)
		}
	}
	return nil
}

// Begin opens the single transaction an import run executes inside.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	var tx *sql.Tx
	err := retryOnBusy(ctx, func() error {
		var beginErr error
		tx, beginErr = s.db.BeginTx(ctx, nil)
		return beginErr
	})
	if err != nil {
		return nil, apperrors.CatalogError(apperrors.CodeTxFailed, "begin", err)
	}
	return &Tx{tx: tx, ctx: ctx}, nil
}

// LedgerCount returns the number of ledger entries currently committed.
// Intended for verification and reporting outside a run transaction.
func (s *Store) LedgerCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger`).Scan(&n)
	if err != nil {
		return 0, apperrors.CatalogError(apperrors.CodeQueryFailed, "count ledger", err)
	}
	return n, nil
}

// ItemCount returns the number of catalog items currently committed.
func (s *Store) ItemCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	if err != nil {
		return 0, apperrors.CatalogError(apperrors.CodeQueryFailed, "count items", err)
	}
	return n, nil
}
