package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// Progress is a byte-counting progress bar drawn on stderr with mpb
type Progress struct {
	container   *mpb.Progress
	bar         *mpb.Bar
	enabled     bool
	description string
}

var descLength = 24

// NewProgress creates a progress bar for a transfer of total bytes.
// A total of zero or less means the size is unknown. The bar is only drawn
// when enabled and stderr is a terminal.
func NewProgress(total int64, description string, enabled bool) *Progress {
	isTerm := IsTerminal(os.Stderr)

	p := &Progress{
		enabled:     enabled && isTerm,
		description: description,
	}

	if !p.enabled {
		return p
	}

	// Create mpb container that outputs to stderr
	container := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	var counter decor.Decorator
	if total > 0 {
		counter = decor.Counters(decor.SizeB1024(0), "% .1f / % .1f", decor.WC{C: decor.DindentRight})
	} else {
		total = 0
		counter = decor.Current(decor.SizeB1024(0), "% .1f", decor.WC{C: decor.DindentRight})
	}

	bar := container.New(total,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(statistics decor.Statistics) string {
				if len(p.description) > descLength {
					return p.description[:descLength-2] + ".."
				}
				return p.description
			}, decor.WC{W: descLength, C: decor.DindentRight}),
			decor.Name("  "),
			counter,
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)

	p.container = container
	p.bar = bar
	return p
}

// Reader wraps r so reads advance the bar
func (p *Progress) Reader(r io.Reader) io.Reader {
	if !p.enabled || p.bar == nil {
		return r
	}
	return p.bar.ProxyReader(r)
}

// Finish marks the transfer complete at its current size and waits for the
// final render
func (p *Progress) Finish() {
	if !p.enabled || p.container == nil {
		return
	}

	p.bar.SetTotal(-1, true)
	p.container.Wait()

	// Add space after progress bar
	fmt.Fprintln(os.Stderr)
}

// IsTerminal checks if the file is a terminal (TTY)
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
