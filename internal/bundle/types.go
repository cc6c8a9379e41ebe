package bundle

import (
	"context"
	"io"
)

// Accessor describes how a support bundle's listing and entries are reached.
// Backends (local archives, fetched remote archives) implement it so the
// dashboard never depends on a concrete archive type.
type Accessor interface {
	// Index returns the ordered listing of the bundle
	Index(ctx context.Context) (*Index, error)
	// File returns a fresh stream over the named entry, positioned at offset 0.
	// Streams returned by separate calls never share state.
	File(ctx context.Context, path string) (io.ReadCloser, error)
}

// format is the per-container half of a local archive: it knows how to list
// the container and how to decompress a single entry.
type format interface {
	// list returns entry names in container order, directories suffixed with "/"
	list() ([]string, error)
	// extract returns the full decompressed contents of one entry
	extract(name string) ([]byte, error)
	Close() error
}
