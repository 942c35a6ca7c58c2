package storage

import (
	"context"
	"fmt"
	"os"
)

// LocalStorage implements the Storage interface for the local output tree.
// Converted files are already in place, so publishing only confirms the
// file exists.
type LocalStorage struct{}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// Publish returns localPath once it is confirmed to be a regular file.
func (s *LocalStorage) Publish(ctx context.Context, _ string, localPath string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("stat converted file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("converted file %s is not a regular file", localPath)
	}

	return localPath, nil
}

// Compile-time check that LocalStorage implements Storage.
var _ Storage = (*LocalStorage)(nil)
