package bundle

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DirectorySuffix marks a directory entry in a listing
const DirectorySuffix = "/"

// Index is the immutable, ordered list of entry paths in a bundle.
// Listing order is traversal order and is never re-sorted.
type Index struct {
	files []string
}

// NewIndex builds an index from newline-delimited listing text. One path per
// line, no escaping; blank lines are skipped.
func NewIndex(listing string) *Index {
	lines := strings.Split(listing, "\n")
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		files = append(files, line)
	}
	return &Index{files: files}
}

// Files returns entry paths in listing order. The slice is a copy.
func (idx *Index) Files() []string {
	files := make([]string, len(idx.files))
	copy(files, idx.files)
	return files
}

// Len returns the number of entries
func (idx *Index) Len() int {
	return len(idx.files)
}

// At returns the path at position i
func (idx *Index) At(i int) string {
	return idx.files[i]
}

// Contains reports whether path is listed
func (idx *Index) Contains(path string) bool {
	for _, f := range idx.files {
		if f == path {
			return true
		}
	}
	return false
}

// Listing renders the index back into newline-delimited form
func (idx *Index) Listing() string {
	return strings.Join(idx.files, "\n")
}

// Filter returns a new index holding the entries matching the glob pattern,
// in their original order. Patterns use "/" as separator, so "*" stays inside
// one path segment and "**" crosses segments.
func (idx *Index) Filter(pattern string) (*Index, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("compiling match pattern %q: %w", pattern, err)
	}

	files := make([]string, 0, len(idx.files))
	for _, f := range idx.files {
		if g.Match(f) {
			files = append(files, f)
		}
	}
	return &Index{files: files}, nil
}

// IsDir reports whether the path denotes a directory entry
func IsDir(path string) bool {
	return strings.HasSuffix(path, DirectorySuffix)
}
