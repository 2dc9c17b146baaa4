package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Fetch when the remote object does not
// exist. Any other failure is treated as transient by callers.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the remote file store the ledger lives in: one fixed
// object, fetched and overwritten whole. The store offers no locking,
// versioning, or concurrency control.
type ObjectStore interface {
	// Fetch returns the full object bytes.
	Fetch(ctx context.Context) ([]byte, error)

	// Store overwrites the object with data.
	Store(ctx context.Context, data []byte) error
}
