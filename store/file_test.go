package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3tea/fixture-sentinel/store"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := store.OpenFileStore(path)
	require.NoError(t, err)

	// Absent keys are not errors.
	value, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, s.Set(ctx, "fixture-1", []byte("abc123")))
	require.NoError(t, s.Set(ctx, "fixture-2", []byte("def456")))

	value, err = s.Get(ctx, "fixture-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc123"), value)

	require.NoError(t, s.Close())

	// Reopen from disk.
	reopened, err := store.OpenFileStore(path)
	require.NoError(t, err)
	value, err = reopened.Get(ctx, "fixture-2")
	require.NoError(t, err)
	assert.Equal(t, []byte("def456"), value)

	require.NoError(t, reopened.Delete(ctx, "fixture-2"))
	value, err = reopened.Get(ctx, "fixture-2")
	require.NoError(t, err)
	assert.Nil(t, value)

	// Deleting an absent key is a no-op.
	require.NoError(t, reopened.Delete(ctx, "fixture-2"))
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")

	s, err := store.OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0o644))

	_, err := store.OpenFileStore(path)
	require.Error(t, err)
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := store.OpenFileStore(path)
	require.NoError(t, err)

	value, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, value)
}
