package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Compile-time interface compliance check.
var _ Store = (*FileStore)(nil)

// FileStore keeps one file per document under dir/collection/key.json.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory: %w", ErrInvalidKey)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection, key string) string {
	return filepath.Join(s.dir, collection, key+".json")
}

// Get reads a document.
func (s *FileStore) Get(_ context.Context, collection, key string) ([]byte, error) {
	if err := checkNames(collection, key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(collection, key)) // #nosec G304 -- names are validated
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

// Put writes a document, replacing any previous version. The write goes
// through a temporary file so readers never see a partial document.
func (s *FileStore) Put(_ context.Context, collection, key string, doc []byte) error {
	if err := checkNames(collection, key); err != nil {
		return err
	}
	dir := filepath.Join(s.dir, collection)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	writeErr := func() error {
		defer func() { _ = tmp.Close() }()
		if _, err := tmp.Write(doc); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		return nil
	}()
	if writeErr != nil {
		_ = os.Remove(tmp.Name())
		return writeErr
	}
	if err := os.Rename(tmp.Name(), s.path(collection, key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

// Keys lists the keys of a collection in lexical order.
func (s *FileStore) Keys(_ context.Context, collection string) ([]string, error) {
	if !validName.MatchString(collection) {
		return nil, fmt.Errorf("collection %q: %w", collection, ErrInvalidKey)
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
