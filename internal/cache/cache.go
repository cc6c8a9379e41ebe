package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Cache handles cache directory operations and file validation
type Cache struct {
	dir string
}

// CacheManager creates a cache rooted at the default location
func CacheManager() *Cache {
	return &Cache{}
}

// New creates a cache rooted at dir; an empty dir selects the default
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// GetCacheDir returns the cache root
func (m *Cache) GetCacheDir() string {
	if m.dir != "" {
		return m.dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".bundleview", "cache")
	}
	return filepath.Join(homeDir, ".bundleview", "cache")
}

// EnsureDir creates a directory and all parent directories
func (m *Cache) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// FileExists checks if a file exists
func (m *Cache) FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// GetFileSize returns the size of a file, or 0 if it doesn't exist
func (m *Cache) GetFileSize(filename string) int64 {
	info, err := os.Stat(filename)
	if err != nil {
		return 0
	}
	return info.Size()
}

// GetIndexDBPath returns the path of the listing cache database
func (m *Cache) GetIndexDBPath() string {
	return filepath.Join(m.GetCacheDir(), "index.db")
}

// GetDownloadPath returns where a remote archive is stored. The URL hash
// keeps distinct sources apart; the original base name is kept so the
// archive format can still be recognized from the suffix.
func (m *Cache) GetDownloadPath(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	prefix := hex.EncodeToString(sum[:])[:16]

	name := "bundle"
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" {
			name = base
		}
	}
	name = strings.ReplaceAll(name, " ", "_")

	return filepath.Join(m.GetCacheDir(), "downloads", prefix+"-"+name)
}
