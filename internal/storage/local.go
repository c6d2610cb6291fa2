package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps blobs on the local filesystem under a base directory.
// Handles are paths relative to that directory.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create upload directory %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Upload(_ context.Context, name string, data []byte) (string, error) {
	rel := filepath.ToSlash(filepath.Clean(name))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("cannot create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("cannot write blob %s: %w", rel, err)
	}
	return rel, nil
}

func (s *LocalStore) Read(_ context.Context, handle string) ([]byte, error) {
	rel := filepath.ToSlash(filepath.Clean(handle))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("invalid blob handle %q", handle)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("cannot read blob %s: %w", rel, err)
	}
	return data, nil
}
