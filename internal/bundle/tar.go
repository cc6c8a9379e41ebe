package bundle

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// tarFormat reads plain or compressed tarballs. Tar has no central
// directory, so every list or extract call streams the archive from the
// start.
type tarFormat struct {
	path       string
	decompress decompressor
}

func tarOpener(decompress decompressor) formatOpener {
	return func(path string) (format, error) {
		return &tarFormat{path: path, decompress: decompress}, nil
	}
}

func (t *tarFormat) list() ([]string, error) {
	var names []string
	err := t.walk(func(hdr *tar.Header, _ *tar.Reader) (bool, error) {
		names = append(names, tarEntryName(hdr))
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (t *tarFormat) extract(name string) ([]byte, error) {
	var data []byte
	found := false
	err := t.walk(func(hdr *tar.Header, tr *tar.Reader) (bool, error) {
		if tarEntryName(hdr) != name {
			return false, nil
		}
		found = true

		var err error
		data, err = io.ReadAll(tr)
		if err != nil {
			return true, fmt.Errorf("reading tar entry: %w", err)
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

func (t *tarFormat) Close() error {
	return nil
}

// walk calls fn for every entry header until fn reports done
func (t *tarFormat) walk(fn func(hdr *tar.Header, tr *tar.Reader) (bool, error)) error {
	file, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("opening tar archive: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if t.decompress != nil {
		dr, err := t.decompress(file)
		if err != nil {
			return fmt.Errorf("opening decompressor: %w", err)
		}
		defer dr.Close()
		r = dr
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar header: %w", err)
		}

		switch hdr.Typeflag {
		case tar.TypeXGlobalHeader, tar.TypeXHeader:
			continue
		}

		done, err := fn(hdr, tr)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func tarEntryName(hdr *tar.Header) string {
	return entryName(hdr.Name, hdr.Typeflag == tar.TypeDir)
}
