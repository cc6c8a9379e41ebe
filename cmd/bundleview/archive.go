package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchantrell/bundleview/internal/bundle"
	"github.com/jchantrell/bundleview/internal/cache"
)

var forceDownload bool

// openArchive opens path with the configured caches. The returned close
// function releases the archive and the listing cache.
func openArchive(ctx context.Context, path string) (*bundle.Archive, func(), error) {
	c := cache.New(cfg.CacheDir)

	opts := bundle.Options{
		EntryCacheSize: cfg.EntryCacheSize,
		Cache:          c,
		ForceDownload:  forceDownload || cfg.ForceDownload,
		Progress:       cfg.Progress,
	}

	var store *cache.IndexStore
	if cfg.IndexCache {
		var err error
		store, err = cache.OpenIndexStore(cache.DefaultIndexStoreOptions(c.GetIndexDBPath()))
		if err != nil {
			return nil, nil, fmt.Errorf("opening index cache: %w", err)
		}
		opts.IndexStore = store
	}

	archive, err := bundle.Open(ctx, path, opts)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	closeFn := func() {
		if err := archive.Close(); err != nil {
			slog.Debug("Closing archive failed", "error", err)
		}
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Debug("Closing index cache failed", "error", err)
			}
		}
	}
	return archive, closeFn, nil
}
