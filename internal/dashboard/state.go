package dashboard

import "io"

// FileState is the state of the entry under inspection. It is either
// Closed or *Open; no other implementations exist.
type FileState interface {
	isFileState()
}

// Closed means no entry is open
type Closed struct{}

func (Closed) isFileState() {}

// Open holds the entry being previewed. The stream is nil when the entry is
// a directory placeholder; otherwise the Dashboard owns it until it is
// closed or detached.
type Open struct {
	stream  io.ReadCloser
	preview []byte
	pending []byte // read ahead of the preview, not yet shown
	eof     bool
}

func (*Open) isFileState() {}

// Preview returns the bytes buffered so far
func (o *Open) Preview() []byte {
	return o.preview
}

// HasStream reports whether a live stream backs the preview
func (o *Open) HasStream() bool {
	return o.stream != nil
}

// Exhausted reports whether every byte of the stream is in the preview
func (o *Open) Exhausted() bool {
	return o.stream == nil || (o.eof && len(o.pending) == 0)
}

func (o *Open) close() error {
	if o.stream == nil {
		return nil
	}
	err := o.stream.Close()
	o.stream = nil
	o.preview = nil
	o.pending = nil
	return err
}
