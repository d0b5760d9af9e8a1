// Package memory implements the Coral store collaborator with in-memory maps.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/archivelab/coral/pkg/store"
)

// MemoryStore implements store.Store using in-memory storage.
//
// Suitable for tests, development and ephemeral deployments. All operations
// are protected by a single read-write mutex; coarse-grained but correct.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string][]byte
}

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{rows: make(map[string][]byte)}
}

// Get returns the value stored under key, or store.ErrKeyNotFound.
func (s *MemoryStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.rows[string(key)]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set inserts or replaces the value stored under key.
func (s *MemoryStore) Set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.rows[string(key)] = stored
	return nil
}

// Delete removes the row for key. Deleting a missing key is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, string(key))
	return nil
}

// Scan visits rows with the given prefix in ascending key order.
//
// The row set is snapshotted under the read lock before fn is invoked, so
// callbacks may issue store mutations without deadlocking.
func (s *MemoryStore) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.rows))
	for k := range s.rows {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	snapshot := make(map[string][]byte, len(keys))
	for _, k := range keys {
		snapshot[k] = s.rows[k]
	}
	s.mu.RUnlock()

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn([]byte(k), snapshot[k]); err != nil {
			return err
		}
	}
	return nil
}

// Close releases nothing; the store is garbage collected.
func (s *MemoryStore) Close() error {
	return nil
}
