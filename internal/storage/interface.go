package storage

import (
	"context"
	"io"
)

// ProgressFunc receives the bytes written so far for one object and its
// expected size (0 when unknown).
type ProgressFunc func(written, total int64)

// StorageInterface defines the object store behind room images.
// Supports both mock (local filesystem) and Firebase Storage.
type StorageInterface interface {
	// Upload stores the object under key and returns its durable download URL.
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64, progress ProgressFunc) (string, error)

	// DeleteFile removes an object. Deleting a missing object is not an error.
	DeleteFile(ctx context.Context, key string) error

	// KeyFromURL recovers the object key from a URL this store produced.
	// ok is false for URLs from elsewhere, such as manually entered links.
	KeyFromURL(rawURL string) (key string, ok bool)
}
