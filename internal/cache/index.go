package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// IndexStore keeps archive listings in SQLite so large compressed archives
// do not have to be re-scanned on every run. Entries are keyed by absolute
// path, size and modification time; a changed archive simply misses.
type IndexStore struct {
	db   *sql.DB
	path string
}

// IndexKey identifies one version of an archive on disk
type IndexKey struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// IndexStoreOptions configures the listing cache database
type IndexStoreOptions struct {
	// Path to the SQLite database file
	Path string

	// BusyTimeout sets the timeout for locked database operations
	BusyTimeout time.Duration
}

// DefaultIndexStoreOptions returns sensible defaults for the listing cache
func DefaultIndexStoreOptions(path string) *IndexStoreOptions {
	return &IndexStoreOptions{
		Path:        path,
		BusyTimeout: 5 * time.Second,
	}
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS archive_index (
	path     TEXT PRIMARY KEY,
	size     INTEGER NOT NULL,
	mod_time INTEGER NOT NULL,
	listing  TEXT NOT NULL
)`

// OpenIndexStore opens (creating if needed) the listing cache
func OpenIndexStore(options *IndexStoreOptions) (*IndexStore, error) {
	if options == nil {
		return nil, fmt.Errorf("index store options cannot be nil")
	}

	if options.Path == "" {
		return nil, fmt.Errorf("index store path cannot be empty")
	}

	if err := ensureDirectory(options.Path); err != nil {
		return nil, fmt.Errorf("creating index store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", buildConnectionString(options))
	if err != nil {
		return nil, fmt.Errorf("opening index store %s: %w", options.Path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("testing index store connection: %w", err)
	}

	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index store schema: %w", err)
	}

	return &IndexStore{db: db, path: options.Path}, nil
}

// Lookup returns the cached listing for key, if present and current
func (s *IndexStore) Lookup(ctx context.Context, key IndexKey) ([]string, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("index store is closed")
	}

	var listing string
	row := s.db.QueryRowContext(ctx,
		`SELECT listing FROM archive_index WHERE path = ? AND size = ? AND mod_time = ?`,
		key.Path, key.Size, key.ModTime.UnixNano())
	if err := row.Scan(&listing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying index store: %w", err)
	}

	if listing == "" {
		return []string{}, true, nil
	}
	return strings.Split(listing, "\n"), true, nil
}

// Store records the listing for key, replacing any older version
func (s *IndexStore) Store(ctx context.Context, key IndexKey, names []string) error {
	if s.db == nil {
		return fmt.Errorf("index store is closed")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO archive_index (path, size, mod_time, listing) VALUES (?, ?, ?, ?)`,
		key.Path, key.Size, key.ModTime.UnixNano(), strings.Join(names, "\n"))
	if err != nil {
		return fmt.Errorf("writing index store: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *IndexStore) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	if err != nil {
		return fmt.Errorf("closing index store: %w", err)
	}

	return nil
}

// buildConnectionString constructs the SQLite connection string with pragmas
func buildConnectionString(options *IndexStoreOptions) string {
	pragmas := []string{"_journal_mode=WAL"}
	if options.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_busy_timeout=%d", int(options.BusyTimeout.Milliseconds())))
	}
	return "file:" + options.Path + "?" + strings.Join(pragmas, "&")
}

// ensureDirectory creates the directory for the database file if it doesn't exist
func ensureDirectory(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}

	return os.MkdirAll(dir, 0755)
}
