package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jchantrell/bundleview/internal/cache"
)

// DefaultEntryCacheSize is the number of decompressed entries kept in memory
const DefaultEntryCacheSize = 8

// Options configures how an archive is opened
type Options struct {
	// EntryCacheSize bounds the LRU of decompressed entries; 0 disables it
	EntryCacheSize int
	// IndexStore caches listings between runs; nil disables it
	IndexStore *cache.IndexStore
	// Cache locates downloaded remote archives
	Cache *cache.Cache
	// ForceDownload re-fetches remote archives even when cached
	ForceDownload bool
	// Progress shows a download progress bar on a terminal
	Progress bool
}

// Archive is a local archive file exposed as an Accessor.
//
// Entries are decompressed fully into memory when requested and served from
// an in-memory reader. Very large entries therefore cost their full size in
// memory while open.
type Archive struct {
	path    string
	info    os.FileInfo
	store   *cache.IndexStore
	entries *lru.Cache[string, []byte]

	mu     sync.Mutex
	format format
}

var _ Accessor = (*Archive)(nil)

// Open opens the archive at path, which may also be an http(s) URL that is
// downloaded into the cache first. The container format is chosen from the
// file name.
func Open(ctx context.Context, path string, opts Options) (*Archive, error) {
	if IsRemote(path) {
		c := opts.Cache
		if c == nil {
			c = cache.CacheManager()
		}
		local, err := Fetch(ctx, c, path, opts.ForceDownload, opts.Progress)
		if err != nil {
			return nil, &IndexError{Source: path, Err: err}
		}
		path = local
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &IndexError{Source: path, Err: err}
	}
	if info.IsDir() {
		return nil, &IndexError{Source: path, Err: fmt.Errorf("is a directory")}
	}

	opener, err := formatFor(path)
	if err != nil {
		return nil, &IndexError{Source: path, Err: err}
	}

	f, err := opener(path)
	if err != nil {
		return nil, &IndexError{Source: path, Err: err}
	}

	archive := &Archive{
		path:   path,
		info:   info,
		store:  opts.IndexStore,
		format: f,
	}

	if opts.EntryCacheSize > 0 {
		entries, err := lru.New[string, []byte](opts.EntryCacheSize)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating entry cache: %w", err)
		}
		archive.entries = entries
	}

	slog.Debug("Opened archive", "path", path, "size", info.Size())

	return archive, nil
}

// Path returns the local path of the archive
func (a *Archive) Path() string {
	return a.path
}

// Index lists the archive, consulting the index store first when one is set
func (a *Archive) Index(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, &IndexError{Source: a.path, Err: err}
	}

	key := a.storeKey()
	if a.store != nil {
		names, ok, err := a.store.Lookup(ctx, key)
		if err != nil {
			slog.Warn("Index cache lookup failed", "path", a.path, "error", err)
		} else if ok {
			slog.Debug("Index cache hit", "path", a.path, "entries", len(names))
			return NewIndex(strings.Join(names, "\n")), nil
		}
	}

	a.mu.Lock()
	names, err := a.format.list()
	a.mu.Unlock()
	if err != nil {
		return nil, &IndexError{Source: a.path, Err: err}
	}

	if a.store != nil {
		if err := a.store.Store(ctx, key, names); err != nil {
			slog.Warn("Index cache store failed", "path", a.path, "error", err)
		}
	}

	return NewIndex(strings.Join(names, "\n")), nil
}

// File decompresses the named entry into memory and returns a reader over it
func (a *Archive) File(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	if a.entries != nil {
		if data, ok := a.entries.Get(path); ok {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	a.mu.Lock()
	data, err := a.format.extract(path)
	a.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path)
		}
		return nil, &FileAccessError{Path: path, Err: err}
	}

	slog.Debug("Extracted entry", "path", path, "size", len(data))

	if a.entries != nil {
		a.entries.Add(path, data)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Close releases the underlying archive file
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.entries != nil {
		a.entries.Purge()
	}
	return a.format.Close()
}

func (a *Archive) storeKey() cache.IndexKey {
	abs, err := filepath.Abs(a.path)
	if err != nil {
		abs = a.path
	}
	return cache.IndexKey{
		Path:    abs,
		Size:    a.info.Size(),
		ModTime: a.info.ModTime(),
	}
}
