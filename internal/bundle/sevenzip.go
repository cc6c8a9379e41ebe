package bundle

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/javi11/sevenzip"
)

type sevenZipFormat struct {
	rc *sevenzip.ReadCloser
}

func openSevenZip(path string) (format, error) {
	rc, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening 7z archive: %w", err)
	}
	return &sevenZipFormat{rc: rc}, nil
}

func (s *sevenZipFormat) list() ([]string, error) {
	names := make([]string, 0, len(s.rc.File))
	for _, f := range s.rc.File {
		names = append(names, entryName(f.Name, f.FileInfo().IsDir()))
	}
	return names, nil
}

func (s *sevenZipFormat) extract(name string) ([]byte, error) {
	for _, f := range s.rc.File {
		if entryName(f.Name, f.FileInfo().IsDir()) != name {
			continue
		}

		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening 7z entry: %w", err)
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decompressing 7z entry: %w", err)
		}
		return data, nil
	}
	return nil, fs.ErrNotExist
}

func (s *sevenZipFormat) Close() error {
	return s.rc.Close()
}
