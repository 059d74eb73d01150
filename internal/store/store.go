// Package store keeps JSON documents addressable by collection and key.
// The completion response cache is its main tenant.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotFound indicates no document exists under the requested key.
var ErrNotFound = errors.New("document not found")

// ErrInvalidKey indicates a collection or key that cannot be stored safely.
var ErrInvalidKey = errors.New("invalid document key")

// Store is an addressable JSON document store.
type Store interface {
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Put(ctx context.Context, collection, key string, doc []byte) error
	Keys(ctx context.Context, collection string) ([]string, error)
	Close() error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func checkNames(collection, key string) error {
	if !validName.MatchString(collection) {
		return fmt.Errorf("collection %q: %w", collection, ErrInvalidKey)
	}
	if !validName.MatchString(key) {
		return fmt.Errorf("key %q: %w", key, ErrInvalidKey)
	}
	return nil
}

// Open returns a store for dsn: "sqlite:<path>" (or a path ending in .db or
// .sqlite) opens a SQLite database, anything else is a directory.
func Open(dsn string) (Store, error) {
	if path, ok := strings.CutPrefix(dsn, "sqlite:"); ok && path != "" {
		return OpenSQLite(path)
	}
	if strings.HasSuffix(dsn, ".db") || strings.HasSuffix(dsn, ".sqlite") {
		return OpenSQLite(dsn)
	}
	return NewFileStore(dsn)
}
