package kv_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceloop/notifykit/pkg/kv"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		require.NoError(t, s.Set(ctx, "status:1", []byte("pending")))

		v, err := s.Get(ctx, "status:1")
		require.NoError(t, err)
		assert.Equal(t, []byte("pending"), v)
	})

	t.Run("get missing key", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("set overwrites", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("a")))
		require.NoError(t, s.Set(ctx, "k", []byte("b")))

		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("a")))
		require.NoError(t, s.Remove(ctx, "k"))
		require.NoError(t, s.Remove(ctx, "k"))

		_, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("list keys by prefix", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		require.NoError(t, s.Set(ctx, "fallback:u1:n1", []byte("1")))
		require.NoError(t, s.Set(ctx, "fallback:u1:n2", []byte("2")))
		require.NoError(t, s.Set(ctx, "fallback:u2:n3", []byte("3")))

		keys, err := s.ListKeys(ctx, "fallback:u1:")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"fallback:u1:n1", "fallback:u1:n2"}, keys)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		require.NoError(t, s.Set(ctx, "k", []byte("abc")))

		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		v[0] = 'x'

		again, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("concurrent writes", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_ = s.Set(ctx, "k", []byte{byte(n)})
				_, _ = s.Get(ctx, "k")
			}(i)
		}
		wg.Wait()

		_, err := s.Get(ctx, "k")
		assert.NoError(t, err)
	})
}
