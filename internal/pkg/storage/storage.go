// Package storage abstracts blob storage for uploaded field photos.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for file storage operations. Paths are
// relative to the storage root.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
