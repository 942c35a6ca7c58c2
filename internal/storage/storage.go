// Package storage provides publishing of converted files.
// It defines the Storage interface (port) and implementations for the
// local output tree and for S3.
package storage

import "context"

// Storage defines the interface for publishing a converted file.
// The file has already been written to the local output tree when Publish
// is called; implementations decide whether anything further happens.
type Storage interface {
	// Publish makes the file at localPath available under key, a
	// slash-separated path relative to the output root, and returns the
	// location it can be found at.
	Publish(ctx context.Context, key, localPath string) (location string, err error)
}
