package bundle

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"
)

type zipFormat struct {
	rc *zip.ReadCloser
}

func openZip(path string) (format, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}
	return &zipFormat{rc: rc}, nil
}

func (z *zipFormat) list() ([]string, error) {
	names := make([]string, 0, len(z.rc.File))
	for _, f := range z.rc.File {
		names = append(names, entryName(f.Name, f.FileInfo().IsDir()))
	}
	return names, nil
}

func (z *zipFormat) extract(name string) ([]byte, error) {
	for _, f := range z.rc.File {
		if entryName(f.Name, f.FileInfo().IsDir()) != name {
			continue
		}

		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip entry: %w", err)
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decompressing zip entry: %w", err)
		}
		return data, nil
	}
	return nil, fs.ErrNotExist
}

func (z *zipFormat) Close() error {
	return z.rc.Close()
}

// entryName normalizes directory names to carry the trailing "/"
func entryName(name string, dir bool) string {
	if dir && !IsDir(name) {
		return name + DirectorySuffix
	}
	return name
}
