package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Compile-time interface compliance check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. Use ":memory:" for an
// in-process store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		key        TEXT NOT NULL,
		body       BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, key)
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get reads a document.
func (s *SQLiteStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	if err := checkNames(collection, key); err != nil {
		return nil, err
	}
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND key = ?`, collection, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return body, nil
}

// Put writes a document, replacing any previous version.
func (s *SQLiteStore) Put(ctx context.Context, collection, key string, doc []byte) error {
	if err := checkNames(collection, key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, key, body) VALUES (?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		collection, key, doc)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Keys lists the keys of a collection in lexical order.
func (s *SQLiteStore) Keys(ctx context.Context, collection string) (_ []string, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM documents WHERE collection = ? ORDER BY key`, collection)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

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

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
