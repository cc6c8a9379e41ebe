package bundle

import (
	"archive/tar"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/jchantrell/bundleview/internal/cache"
)

type fixtureEntry struct {
	name string
	body string // ignored for directories
}

var fixtureEntries = []fixtureEntry{
	{name: "a.txt", body: "alpha contents\n"},
	{name: "b/"},
	{name: "b/c.txt", body: "charlie contents\n"},
}

var fixtureListing = []string{"a.txt", "b/", "b/c.txt"}

func writeZip(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range fixtureEntries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if !IsDir(e.name) {
			_, err = io.WriteString(w, e.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

func writeTar(t *testing.T, w io.Writer) {
	t.Helper()
	tw := tar.NewWriter(w)
	for _, e := range fixtureEntries {
		hdr := &tar.Header{Name: e.name, Mode: 0644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if IsDir(e.name) {
			// Some tar writers omit the trailing slash on directories
			hdr = &tar.Header{Name: e.name[:len(e.name)-1], Mode: 0755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !IsDir(e.name) {
			_, err := io.WriteString(tw, e.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}

func writeCompressedTar(t *testing.T, path string, compress func(io.Writer) (io.WriteCloser, error)) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	if compress == nil {
		writeTar(t, f)
		return
	}

	cw, err := compress(f)
	require.NoError(t, err)
	writeTar(t, cw)
	require.NoError(t, cw.Close())
}

var tarCompressors = map[string]func(io.Writer) (io.WriteCloser, error){
	"bundle.tar": nil,
	"bundle.tar.gz": func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	},
	"bundle.tgz": func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	},
	"bundle.tar.zst": func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	},
	"bundle.tar.lz4": func(w io.Writer) (io.WriteCloser, error) {
		return lz4.NewWriter(w), nil
	},
	"bundle.tar.xz": func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	},
	"bundle.tar.br": func(w io.Writer) (io.WriteCloser, error) {
		return brotli.NewWriter(w), nil
	},
}

// fixtures builds the sample bundle in every format that can be written
// from Go and returns their paths
func fixtures(t *testing.T) map[string]string {
	t.Helper()
	dir := t.TempDir()

	paths := map[string]string{}
	zipPath := filepath.Join(dir, "bundle.zip")
	writeZip(t, zipPath)
	paths["bundle.zip"] = zipPath

	for name, compress := range tarCompressors {
		path := filepath.Join(dir, name)
		writeCompressedTar(t, path, compress)
		paths[name] = path
	}
	return paths
}

func openFixture(t *testing.T, path string, opts Options) *Archive {
	t.Helper()
	a, err := Open(context.Background(), path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func readEntry(t *testing.T, a *Archive, name string) string {
	t.Helper()
	rc, err := a.File(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestArchiveFormats(t *testing.T) {
	for name, path := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			a := openFixture(t, path, Options{})

			idx, err := a.Index(context.Background())
			require.NoError(t, err)
			assert.Equal(t, fixtureListing, idx.Files())

			assert.Equal(t, "alpha contents\n", readEntry(t, a, "a.txt"))
			assert.Equal(t, "charlie contents\n", readEntry(t, a, "b/c.txt"))
		})
	}
}

func TestArchiveMissingEntry(t *testing.T) {
	paths := fixtures(t)
	a := openFixture(t, paths["bundle.tar.gz"], Options{})

	_, err := a.File(context.Background(), "nope.txt")
	require.Error(t, err)

	var accessErr *FileAccessError
	assert.ErrorAs(t, err, &accessErr)
	assert.Equal(t, "nope.txt", accessErr.Path)
	assert.True(t, IsNotFound(err))
}

func TestArchiveStreamsAreIndependent(t *testing.T) {
	paths := fixtures(t)
	a := openFixture(t, paths["bundle.zip"], Options{EntryCacheSize: DefaultEntryCacheSize})

	first, err := a.File(context.Background(), "a.txt")
	require.NoError(t, err)
	defer first.Close()

	buf := make([]byte, 5)
	_, err = io.ReadFull(first, buf)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(buf))

	// A second stream, served from the entry cache, starts at offset 0
	assert.Equal(t, "alpha contents\n", readEntry(t, a, "a.txt"))

	rest, err := io.ReadAll(first)
	require.NoError(t, err)
	assert.Equal(t, " contents\n", string(rest))
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(context.Background(), filepath.Join(dir, "missing.zip"), Options{})
	var indexErr *IndexError
	assert.ErrorAs(t, err, &indexErr)

	unknown := filepath.Join(dir, "bundle.rpm")
	require.NoError(t, os.WriteFile(unknown, []byte("x"), 0644))
	_, err = Open(context.Background(), unknown, Options{})
	assert.ErrorAs(t, err, &indexErr)
	assert.ErrorContains(t, err, "unsupported archive format")

	_, err = Open(context.Background(), dir, Options{})
	assert.ErrorAs(t, err, &indexErr)
}

func TestArchiveCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("definitely not gzip"), 0644))

	a := openFixture(t, path, Options{})
	_, err := a.Index(context.Background())

	var indexErr *IndexError
	assert.ErrorAs(t, err, &indexErr)
}

func TestArchiveIndexStore(t *testing.T) {
	paths := fixtures(t)
	store, err := cache.OpenIndexStore(cache.DefaultIndexStoreOptions(filepath.Join(t.TempDir(), "index.db")))
	require.NoError(t, err)
	defer store.Close()

	a := openFixture(t, paths["bundle.tar.zst"], Options{IndexStore: store})
	idx, err := a.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixtureListing, idx.Files())

	names, ok, err := store.Lookup(context.Background(), a.storeKey())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fixtureListing, names)

	// A second open of the same file is answered from the store
	again := openFixture(t, paths["bundle.tar.zst"], Options{IndexStore: store})
	idx, err = again.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixtureListing, idx.Files())
}

func TestOpenRemote(t *testing.T) {
	paths := fixtures(t)
	body, err := os.ReadFile(paths["bundle.zip"])
	require.NoError(t, err)

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	c := cache.New(t.TempDir())
	url := srv.URL + "/support/bundle.zip"

	a := openFixture(t, url, Options{Cache: c})
	assert.Equal(t, c.GetDownloadPath(url), a.Path())
	assert.Equal(t, "alpha contents\n", readEntry(t, a, "a.txt"))

	// Cached copies are reused unless forced
	openFixture(t, url, Options{Cache: c})
	assert.EqualValues(t, 1, requests.Load())

	openFixture(t, url, Options{Cache: c, ForceDownload: true})
	assert.EqualValues(t, 2, requests.Load())
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Fetch(context.Background(), cache.New(t.TempDir()), srv.URL+"/bundle.zip", false, false)
	assert.ErrorContains(t, err, "bad status")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/b.zip"))
	assert.True(t, IsRemote("http://example.com/b.zip"))
	assert.False(t, IsRemote("/tmp/b.zip"))
	assert.False(t, IsRemote("b.zip"))
}
