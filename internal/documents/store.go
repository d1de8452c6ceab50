// Package documents stores generated files, currently on the local
// filesystem under a configured root directory.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists documents by relative path.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Open(ctx context.Context, path string) ([]byte, error)
}

// FSStore keeps documents under a root directory. Paths handed back are
// relative to the root so the root can move without rewriting rows.
type FSStore struct {
	root string
}

// NewFSStore constructs an FSStore rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{root: dir}
}

// Save writes data under invoices/<name> and returns the relative path.
func (s *FSStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	rel := filepath.Join("invoices", filepath.Base(name))
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("documents: mkdir: %w", err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("documents: write: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		return "", fmt.Errorf("documents: rename: %w", err)
	}
	return rel, nil
}

// Open reads a document back by the relative path Save returned.
func (s *FSStore) Open(ctx context.Context, path string) ([]byte, error) {
	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("documents: invalid path %q", path)
	}
	data, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		return nil, fmt.Errorf("documents: read: %w", err)
	}
	return data, nil
}
