package blobstore

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey marks keys that fail validation before touching storage.
var ErrInvalidKey = errors.New("invalid blob key")

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = errors.New("blob not found")

// Store is key-addressed storage for original uploads and derived
// artifacts. Keys are slash-separated paths. Delete is idempotent; deleting
// a missing blob is not an error.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
