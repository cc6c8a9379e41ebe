// Package dashboard implements the navigation and buffering state machine
// behind the interactive bundle inspector. It owns the bundle index, the
// selection cursor and the currently open entry; rendering and input live
// in the tui package.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/jchantrell/bundleview/internal/bundle"
)

// BufferUnit is the most a single buffering pass reads from a stream
const BufferUnit = 1 << 16

// DirectoryPreview is shown in place of contents for directory entries
const DirectoryPreview = "<directory>"

var (
	// ErrNotOpen is returned by DetachStream when no entry is open
	ErrNotOpen = errors.New("no file is open")
	// ErrNoStream is returned by DetachStream for directory placeholders
	ErrNoStream = errors.New("selected entry is a directory")
)

// Direction of a selection move
type Direction int

const (
	Up Direction = iota
	Down
)

// Option configures a Dashboard
type Option func(*options)

type options struct {
	match string
}

// WithMatch restricts the dashboard to entries matching a glob pattern
func WithMatch(pattern string) Option {
	return func(o *options) {
		o.match = pattern
	}
}

// Dashboard is the state of an inspection session: (cursor, FileState).
// It is not safe for concurrent use; the control loop drives it from a
// single goroutine.
type Dashboard struct {
	access   bundle.Accessor
	index    *bundle.Index
	selected int
	file     FileState
}

// New fetches the bundle index and returns a dashboard with the first entry
// selected and nothing open. An empty index yields bundle.ErrEmptyBundle.
func New(ctx context.Context, access bundle.Accessor, opts ...Option) (*Dashboard, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	index, err := access.Index(ctx)
	if err != nil {
		return nil, err
	}

	if o.match != "" {
		index, err = index.Filter(o.match)
		if err != nil {
			return nil, err
		}
	}

	if index.Len() == 0 {
		return nil, bundle.ErrEmptyBundle
	}

	slog.Debug("Dashboard ready", "entries", index.Len())

	return &Dashboard{
		access: access,
		index:  index,
		file:   Closed{},
	}, nil
}

// Index returns the bundle index
func (d *Dashboard) Index() *bundle.Index {
	return d.index
}

// Selected returns the cursor position
func (d *Dashboard) Selected() int {
	return d.selected
}

// SelectedName returns the path under the cursor
func (d *Dashboard) SelectedName() string {
	return d.index.At(d.selected)
}

// State returns the current FileState
func (d *Dashboard) State() FileState {
	return d.file
}

// IsOpen reports whether an entry is open
func (d *Dashboard) IsOpen() bool {
	_, ok := d.file.(*Open)
	return ok
}

// MoveSelection moves the cursor count entries in dir, clamped to the index.
// If an entry is open and the cursor moved, the newly selected entry is
// opened and buffered from its start.
func (d *Dashboard) MoveSelection(ctx context.Context, count int, dir Direction) error {
	old := d.selected
	last := d.index.Len() - 1
	if count < 0 {
		count = 0
	}

	switch dir {
	case Up:
		if count > d.selected {
			d.selected = 0
		} else {
			d.selected -= count
		}
	case Down:
		if count > last-d.selected {
			d.selected = last
		} else {
			d.selected += count
		}
	default:
		return fmt.Errorf("unknown direction %d", dir)
	}

	if old != d.selected && d.IsOpen() {
		return d.OpenAndBuffer(ctx)
	}
	return nil
}

// SelectUp moves the cursor up by count
func (d *Dashboard) SelectUp(ctx context.Context, count int) error {
	return d.MoveSelection(ctx, count, Up)
}

// SelectDown moves the cursor down by count
func (d *Dashboard) SelectDown(ctx context.Context, count int) error {
	return d.MoveSelection(ctx, count, Down)
}

// ToggleOpen opens and buffers the selected entry when closed, and closes it
// when open
func (d *Dashboard) ToggleOpen(ctx context.Context) error {
	switch d.file.(type) {
	case *Open:
		return d.closeFile()
	default:
		return d.OpenAndBuffer(ctx)
	}
}

// OpenAndBuffer opens the selected entry, replacing whatever was open, and
// performs one buffering pass
func (d *Dashboard) OpenAndBuffer(ctx context.Context) error {
	if err := d.openFile(ctx); err != nil {
		return err
	}
	return d.BufferMore(ctx)
}

func (d *Dashboard) openFile(ctx context.Context) error {
	if err := d.closeFile(); err != nil {
		slog.Debug("Closing previous entry failed", "error", err)
	}

	path := d.SelectedName()
	if bundle.IsDir(path) {
		d.file = &Open{preview: []byte(DirectoryPreview)}
		return nil
	}

	stream, err := d.access.File(ctx, path)
	if err != nil {
		var accessErr *bundle.FileAccessError
		if errors.As(err, &accessErr) {
			return err
		}
		return &bundle.FileAccessError{Path: path, Err: err}
	}

	d.file = &Open{stream: stream, preview: []byte{}}
	return nil
}

func (d *Dashboard) closeFile() error {
	open, ok := d.file.(*Open)
	d.file = Closed{}
	if !ok {
		return nil
	}
	return open.close()
}

// BufferMore reads up to BufferUnit more bytes of the open entry into the
// preview. It does nothing when closed, for directories, or once the stream
// is exhausted.
func (d *Dashboard) BufferMore(ctx context.Context) error {
	open, ok := d.file.(*Open)
	if !ok || open.Exhausted() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := len(open.preview)
	buf := slices.Grow(open.preview, BufferUnit)[:start+BufferUnit]
	n := copy(buf[start:], open.pending)
	open.pending = nil

	var err error
	if !open.eof {
		var m int
		m, err = readFull(open.stream, buf[start+n:])
		n += m
	}
	open.preview = buf[:start+n]

	// Look one byte ahead so an entry ending on a unit boundary is
	// reported exhausted without another pass.
	if err == nil && !open.eof {
		var next [1]byte
		var m int
		m, err = readFull(open.stream, next[:])
		open.pending = append(open.pending, next[:m]...)
	}

	switch {
	case errors.Is(err, io.EOF):
		open.eof = true
		return nil
	case err != nil:
		return &bundle.FileAccessError{Path: d.SelectedName(), Err: err}
	}
	return nil
}

// readFull reads until buf is full or the stream fails. Unlike io.ReadFull
// it returns the stream's own error, so a short read ending in io.EOF is
// told apart from a stream that broke with io.ErrUnexpectedEOF.
func readFull(r io.Reader, buf []byte) (n int, err error) {
	for n < len(buf) && err == nil {
		var m int
		m, err = r.Read(buf[n:])
		n += m
	}
	return n, err
}

// Preview returns the buffered bytes of the open entry; ok is false when
// closed
func (d *Dashboard) Preview() (preview []byte, ok bool) {
	open, ok := d.file.(*Open)
	if !ok {
		return nil, false
	}
	return open.preview, true
}

// DetachStream hands the open entry's stream to the caller. The returned
// reader yields the buffered preview followed by the unread remainder of the
// stream, so each byte of the entry is delivered exactly once. The
// dashboard is left Closed.
func (d *Dashboard) DetachStream() (io.ReadCloser, error) {
	open, ok := d.file.(*Open)
	if !ok {
		return nil, ErrNotOpen
	}
	if open.stream == nil {
		return nil, ErrNoStream
	}

	d.file = Closed{}
	return &detached{
		Reader: io.MultiReader(bytes.NewReader(open.preview), bytes.NewReader(open.pending), open.stream),
		stream: open.stream,
	}, nil
}

// Close releases any open stream
func (d *Dashboard) Close() error {
	return d.closeFile()
}

type detached struct {
	io.Reader
	stream io.Closer
}

func (s *detached) Close() error {
	return s.stream.Close()
}
