package kv_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceloop/notifykit/pkg/kv"
)

func TestFileStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty path rejected", func(t *testing.T) {
		t.Parallel()

		_, err := kv.NewFileStore("")
		assert.Error(t, err)
	})

	t.Run("set get remove", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notify.json")
		s, err := kv.NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, s.Set(ctx, "queue", []byte(`[]`)))

		v, err := s.Get(ctx, "queue")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), v)

		require.NoError(t, s.Remove(ctx, "queue"))
		_, err = s.Get(ctx, "queue")
		assert.ErrorIs(t, err, kv.ErrKeyNotFound)
	})

	t.Run("survives reopen", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notify.json")

		s, err := kv.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, "status:n1", []byte("failed")))
		require.NoError(t, s.Set(ctx, "status:n2", []byte("delivered")))

		reopened, err := kv.NewFileStore(path)
		require.NoError(t, err)

		v, err := reopened.Get(ctx, "status:n1")
		require.NoError(t, err)
		assert.Equal(t, []byte("failed"), v)

		keys, err := reopened.ListKeys(ctx, "status:")
		require.NoError(t, err)
		assert.Len(t, keys, 2)
	})

	t.Run("creates parent directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "notify.json")
		s, err := kv.NewFileStore(path)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, "k", []byte("v")))
	})
}
