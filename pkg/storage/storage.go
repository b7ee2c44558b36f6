// Package storage persists uploaded blobs under string keys.
// The filesystem implementation streams writes through a temp file so a key
// is only ever visible once its content is complete.
package storage

import (
	"context"
	"io"

	"github.com/JaimeStill/image-intake/pkg/lifecycle"
)

// System defines blob storage operations.
type System interface {
	// Store streams r to key and returns the number of bytes written. The key
	// becomes visible only after r is fully consumed without error; on failure
	// nothing is left behind. An existing key is never replaced: Store returns
	// ErrExists and the stored content is untouched.
	Store(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader for key. Returns ErrNotFound if it does not exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Path resolves key to its location on the backing store.
	Path(ctx context.Context, key string) (string, error)

	// Start registers lifecycle hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}
