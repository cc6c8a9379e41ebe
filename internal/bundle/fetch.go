package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jchantrell/bundleview/internal/cache"
	"github.com/jchantrell/bundleview/internal/utils"
)

// IsRemote reports whether path names an http(s) source
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetch downloads a remote archive into the cache and returns its local
// path. A cached, non-empty copy is reused unless force is set.
func Fetch(ctx context.Context, c *cache.Cache, rawURL string, force, progress bool) (string, error) {
	localPath := c.GetDownloadPath(rawURL)

	if !force {
		if c.FileExists(localPath) {
			size := c.GetFileSize(localPath)
			if size > 0 {
				slog.Debug("Bundle already cached", "url", rawURL, "path", localPath, "size", size)
				return localPath, nil
			}
		}
	}

	slog.Info("Fetching bundle", "url", rawURL, "destination", localPath)

	if err := c.EnsureDir(filepath.Dir(localPath)); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	if err := utils.DownloadFile(ctx, localPath, rawURL, progress); err != nil {
		return "", fmt.Errorf("downloading bundle from %s: %w", rawURL, err)
	}

	if !c.FileExists(localPath) {
		return "", fmt.Errorf("downloaded bundle is missing")
	}

	if c.GetFileSize(localPath) == 0 {
		return "", fmt.Errorf("downloaded bundle is empty")
	}

	return localPath, nil
}
