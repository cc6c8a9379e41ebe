package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDownloadPath(t *testing.T) {
	c := New("/tmp/bv")

	p := c.GetDownloadPath("https://example.com/bundles/node%201.tar.gz?token=x")
	assert.Equal(t, filepath.Join("/tmp/bv", "downloads"), filepath.Dir(p))
	assert.True(t, strings.HasSuffix(p, "-node_1.tar.gz"), p)

	other := c.GetDownloadPath("https://example.org/bundles/node%201.tar.gz")
	assert.NotEqual(t, p, other)
	assert.Equal(t, p, c.GetDownloadPath("https://example.com/bundles/node%201.tar.gz?token=x"))

	bare := c.GetDownloadPath("https://example.com/")
	assert.True(t, strings.HasSuffix(bare, "-bundle"), bare)
}

func TestCacheDirDefault(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".bundleview", "cache"), CacheManager().GetCacheDir())
	assert.Equal(t, filepath.Join("/tmp/bv", "index.db"), New("/tmp/bv").GetIndexDBPath())
}

func TestFileHelpers(t *testing.T) {
	c := New(t.TempDir())
	path := filepath.Join(c.GetCacheDir(), "nested", "file")

	assert.False(t, c.FileExists(path))
	assert.Zero(t, c.GetFileSize(path))

	require.NoError(t, c.EnsureDir(filepath.Dir(path)))
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0644))

	assert.True(t, c.FileExists(path))
	assert.EqualValues(t, 5, c.GetFileSize(path))
}

func openTestStore(t *testing.T) *IndexStore {
	t.Helper()
	store, err := OpenIndexStore(DefaultIndexStoreOptions(filepath.Join(t.TempDir(), "sub", "index.db")))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIndexStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := IndexKey{Path: "/bundles/a.zip", Size: 42, ModTime: time.Unix(1700000000, 5)}

	_, ok, err := store.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Store(ctx, key, []string{"a.txt", "b/", "b/c.txt"}))

	names, ok, err := store.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a.txt", "b/", "b/c.txt"}, names)
}

func TestIndexStoreMissesChangedArchive(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := IndexKey{Path: "/bundles/a.zip", Size: 42, ModTime: time.Unix(1700000000, 0)}
	require.NoError(t, store.Store(ctx, key, []string{"a.txt"}))

	grown := key
	grown.Size = 43
	_, ok, err := store.Lookup(ctx, grown)
	require.NoError(t, err)
	assert.False(t, ok)

	touched := key
	touched.ModTime = key.ModTime.Add(time.Second)
	_, ok, err = store.Lookup(ctx, touched)
	require.NoError(t, err)
	assert.False(t, ok)

	// Storing the new version replaces the old one
	require.NoError(t, store.Store(ctx, grown, []string{"a.txt", "b.txt"}))
	_, ok, err = store.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIndexStoreEmptyListing(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	key := IndexKey{Path: "/bundles/empty.zip"}

	require.NoError(t, store.Store(ctx, key, nil))
	names, ok, err := store.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, names)
}

func TestIndexStoreClosed(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, _, err := store.Lookup(context.Background(), IndexKey{})
	assert.Error(t, err)
	assert.Error(t, store.Store(context.Background(), IndexKey{}, nil))
}

func TestOpenIndexStoreValidation(t *testing.T) {
	_, err := OpenIndexStore(nil)
	assert.Error(t, err)

	_, err = OpenIndexStore(&IndexStoreOptions{})
	assert.Error(t, err)

	assert.Equal(t, "file:/x/index.db?_journal_mode=WAL&_busy_timeout=5000",
		buildConnectionString(DefaultIndexStoreOptions("/x/index.db")))
}
