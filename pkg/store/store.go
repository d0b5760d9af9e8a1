// Package store defines the column-store collaborator the Coral model layer
// is built on.
//
// The interface is deliberately narrow: point lookups by primary key, prefix
// range scans over a partition, and blind writes. Backends are expected to
// provide linearizable read-after-write visibility for a single key; the
// model layer tolerates eventual propagation across replicas and never
// assumes cross-key transactions.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no row exists for the key.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is the key-value/column interface shared by all backends.
//
// Keys are opaque byte strings; the model layer namespaces them with
// prefixes (see pkg/model/keys.go). Values are serialized by the caller.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set inserts or replaces the value stored under key.
	// Last write wins; the store provides no conditional-write primitive.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes the row for key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key []byte) error

	// Scan visits every row whose key starts with prefix, in ascending key
	// order, invoking fn for each. Returning a non-nil error from fn stops
	// the scan and propagates the error. The key and value slices are only
	// valid for the duration of the callback.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error

	// Close releases backend resources. The store must not be used afterwards.
	Close() error
}
