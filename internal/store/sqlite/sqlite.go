/*
Package sqlite stores the tracker snapshot in a SQLite database.

The database holds a single key-value table. The snapshot is written under
one key as the encoded JSON document, so every save replaces the whole value
in one statement.

USAGE:

	backend, err := sqlite.New("./aishcalc.db")
	if err != nil {
		return err
	}
	defer backend.Close()

Use ":memory:" for an in-memory database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rgehrsitz/aishcalc/internal/domain"
)

// DefaultKey is the row the snapshot is stored under
const DefaultKey = "snapshot"

// Backend implements store.Backend on SQLite
type Backend struct {
	db  *sql.DB
	key string
}

// New opens (or creates) the database at dbPath and migrates the schema
func New(dbPath string) (*Backend, error) {
	return NewWithKey(dbPath, DefaultKey)
}

// NewWithKey is New with a custom row key
func NewWithKey(dbPath, key string) (*Backend, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	b := &Backend{db: db, key: key}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return b, nil
}

func (b *Backend) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Read returns the stored snapshot bytes
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, b.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return value, nil
}

// Write upserts the snapshot bytes
func (b *Backend) Write(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		b.key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// UpdatedAt reports when the snapshot was last written
func (b *Backend) UpdatedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, b.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query snapshot timestamp: %w", err)
	}
	return time.Parse(time.RFC3339, raw)
}

// Close closes the database connection
func (b *Backend) Close() error {
	return b.db.Close()
}
