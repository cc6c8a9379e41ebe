package bundle

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrEmptyBundle is returned when a bundle listing has no entries
var ErrEmptyBundle = errors.New("no files found in support bundle")

// IndexError reports that a bundle could not be opened or listed
type IndexError struct {
	Source string
	Err    error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("reading index of %s: %v", e.Source, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// FileAccessError reports that an entry is missing or unreadable.
// Missing entries wrap fs.ErrNotExist.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to access %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// IOError reports a terminal or output stream failure
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func notFound(path string) error {
	return &FileAccessError{
		Path: path,
		Err: &fs.PathError{
			Op:   "open",
			Path: path,
			Err:  fs.ErrNotExist,
		},
	}
}

// IsNotFound reports whether err means the requested entry does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
