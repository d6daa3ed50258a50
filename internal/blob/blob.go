// Package blob abstracts the object store used for receipt images.
//
// The store maps a key to an opaque binary blob. The service only ever uses
// Put and Get; listing and deletion are intentionally absent.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Store is a key to blob mapping.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// FSStore stores blobs as flat files under a root directory.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FSStore{root: root}, nil
}

// validKey rejects anything that could escape the root directory. Keys are
// generated server-side as "{projectId}-{budgetId}-{randomId}.{ext}", so a
// path separator or traversal sequence means a forged request.
func validKey(key string) bool {
	if key == "" || len(key) > 512 {
		return false
	}
	if strings.ContainsAny(key, "/\\") {
		return false
	}
	if strings.Contains(key, "..") {
		return false
	}
	return true
}

func (s *FSStore) Put(ctx context.Context, key string, r io.Reader) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	f, err := os.Create(filepath.Join(s.root, key))
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("write blob: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close blob file: %w", err)
	}
	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}

	f, err := os.Open(filepath.Join(s.root, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}
