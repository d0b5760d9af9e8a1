package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivelab/coral/pkg/store"
)

func TestMemoryStoreBasics(t *testing.T) {
	s := New()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		_, err := s.Get(ctx, []byte("nope"))
		assert.True(t, errors.Is(err, store.ErrKeyNotFound))
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, []byte("k"), []byte("v")))
		got, err := s.Get(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, []byte("k"), []byte("v2")))
		got, err := s.Get(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, []byte("k")))
		_, err := s.Get(ctx, []byte("k"))
		assert.True(t, errors.Is(err, store.ErrKeyNotFound))

		// Deleting again is a no-op.
		assert.NoError(t, s.Delete(ctx, []byte("k")))
	})

	t.Run("stored values are copies", func(t *testing.T) {
		value := []byte("mutable")
		require.NoError(t, s.Set(ctx, []byte("copy"), value))
		value[0] = 'X'

		got, err := s.Get(ctx, []byte("copy"))
		require.NoError(t, err)
		assert.Equal(t, []byte("mutable"), got)
	})
}

func TestMemoryStoreScan(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, k := range []string{"p:b", "p:a", "p:c", "q:z"} {
		require.NoError(t, s.Set(ctx, []byte(k), []byte("v-"+k)))
	}

	t.Run("prefix filter and key order", func(t *testing.T) {
		var keys []string
		err := s.Scan(ctx, []byte("p:"), func(key, value []byte) error {
			keys = append(keys, string(key))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"p:a", "p:b", "p:c"}, keys)
	})

	t.Run("callback may mutate the store", func(t *testing.T) {
		err := s.Scan(ctx, []byte("p:"), func(key, _ []byte) error {
			return s.Delete(ctx, key)
		})
		require.NoError(t, err)

		var keys []string
		require.NoError(t, s.Scan(ctx, []byte("p:"), func(key, _ []byte) error {
			keys = append(keys, string(key))
			return nil
		}))
		assert.Empty(t, keys)
	})

	t.Run("callback error stops iteration", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.Scan(ctx, []byte("q:"), func(_, _ []byte) error {
			return boom
		})
		assert.True(t, errors.Is(err, boom))
	})
}
