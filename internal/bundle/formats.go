package bundle

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

type formatOpener func(path string) (format, error)

type decompressor func(r io.Reader) (io.ReadCloser, error)

// suffixes are matched longest first, so ".tar.gz" wins over ".gz"
var formatSuffixes = []struct {
	suffix string
	open   formatOpener
}{
	{".tar.gz", tarOpener(gunzip)},
	{".tar.zst", tarOpener(unzstd)},
	{".tar.lz4", tarOpener(unlz4)},
	{".tar.xz", tarOpener(unxz)},
	{".tar.br", tarOpener(unbrotli)},
	{".tgz", tarOpener(gunzip)},
	{".tzst", tarOpener(unzstd)},
	{".txz", tarOpener(unxz)},
	{".tar", tarOpener(nil)},
	{".zip", openZip},
	{".7z", openSevenZip},
	{".rar", openRar},
}

// SupportedFormats lists the archive suffixes Open understands
func SupportedFormats() []string {
	suffixes := make([]string, len(formatSuffixes))
	for i, f := range formatSuffixes {
		suffixes[i] = f.suffix
	}
	return suffixes
}

func formatFor(path string) (formatOpener, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, f := range formatSuffixes {
		if strings.HasSuffix(name, f.suffix) {
			return f.open, nil
		}
	}
	return nil, fmt.Errorf("unsupported archive format: %s (supported: %s)", filepath.Base(path), strings.Join(SupportedFormats(), ", "))
}

func gunzip(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func unzstd(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

func unlz4(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

func unxz(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func unbrotli(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
