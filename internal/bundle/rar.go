package bundle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/nwaples/rardecode/v2"
)

// rarFormat reads rar archives, including multi-volume sets whose first
// volume is given. Like tar, rar is read sequentially on every call.
type rarFormat struct {
	path string
}

func openRar(path string) (format, error) {
	return &rarFormat{path: path}, nil
}

func (r *rarFormat) list() ([]string, error) {
	var names []string
	err := r.walk(func(hdr *rardecode.FileHeader, _ io.Reader) (bool, error) {
		names = append(names, entryName(hdr.Name, hdr.IsDir))
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *rarFormat) extract(name string) ([]byte, error) {
	var data []byte
	found := false
	err := r.walk(func(hdr *rardecode.FileHeader, body io.Reader) (bool, error) {
		if entryName(hdr.Name, hdr.IsDir) != name {
			return false, nil
		}
		found = true

		var err error
		data, err = io.ReadAll(body)
		if err != nil {
			return true, fmt.Errorf("decompressing rar entry: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (r *rarFormat) Close() error {
	return nil
}

func (r *rarFormat) walk(fn func(hdr *rardecode.FileHeader, body io.Reader) (bool, error)) error {
	rc, err := rardecode.OpenReader(r.path)
	if err != nil {
		return fmt.Errorf("opening rar archive: %w", err)
	}
	defer rc.Close()

	for {
		hdr, err := rc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading rar header: %w", err)
		}

		done, err := fn(hdr, rc)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
