package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
  key  TEXT PRIMARY KEY,
  data BLOB NOT NULL
);`

// SQLite keeps every key as a row of a single table. It is an alternative to
// Files for users who prefer one database file over a directory of JSON.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// One writer, and ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Read(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, key)
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", key, err)
	}
	return data, nil
}

func (s *SQLite) Write(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO blobs (key, data) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET data = excluded.data`, key, data)
	if err != nil {
		return fmt.Errorf("storage error writing %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Quarantine(ctx context.Context, key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	backup := key + corruptSuffix

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, backup); err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", key, err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE blobs SET key = ? WHERE key = ?`, backup, key)
	if err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", fmt.Errorf("storage error backing up %s: %w", key, ErrNotExist)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", key, err)
	}
	return backup, nil
}

func (s *SQLite) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM blobs WHERE instr(key, ?) = 1 ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("storage error listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
