package summary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes summaries to the local filesystem.
type FileStore struct{}

// NewFileStore creates a local-file summary store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Write stores data at path name, creating parent directories as needed.
func (s *FileStore) Write(_ context.Context, name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("summary: create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("summary: write %s: %w", name, err)
	}
	return nil
}
