// Package badger implements the Coral store collaborator on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/archivelab/coral/pkg/store"
)

// BadgerStore implements store.Store using BadgerDB for persistence.
//
// Suitable for production deployments that need metadata to survive
// restarts. Every call runs in its own transaction, which gives the model
// layer linearizable read-after-write per key. There is deliberately no
// multi-call transaction surface: the namespace engine's check-then-insert
// sequences stay racy by design, matching the original system.
type BadgerStore struct {
	db *badger.DB
}

// Config contains configuration for creating a BadgerDB store.
type Config struct {
	// DBPath is the directory where BadgerDB will store its files.
	DBPath string `mapstructure:"db_path"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 256).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 128).
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`
}

// New opens a BadgerDB-backed store at the configured path.
//
// The options are tuned for a metadata workload: frequent small reads and
// writes plus prefix scans for directory listings. Values are small JSON
// documents, so value-log compression is not worth its overhead.
func New(ctx context.Context, cfg Config) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	blockCacheMB := cfg.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 256
	}
	indexCacheMB := cfg.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 128
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	return &BadgerStore{db: db}, nil
}

// Get returns the value stored under key, or store.ErrKeyNotFound.
func (s *BadgerStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrKeyNotFound
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (s *BadgerStore) Set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes the row for key. Deleting a missing key is a no-op,
// matching Badger's own semantics.
func (s *BadgerStore) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Scan visits every row whose key starts with prefix in ascending key order.
func (s *BadgerStore) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				return fn(item.Key(), val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying BadgerDB database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
