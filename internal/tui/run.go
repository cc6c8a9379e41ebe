package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jchantrell/bundleview/internal/bundle"
	"github.com/jchantrell/bundleview/internal/dashboard"
	"github.com/jchantrell/bundleview/internal/utils"
)

// Options configures an interactive session
type Options struct {
	Match          string
	Highlight      bool
	HighlightStyle string
	Progress       bool

	// StatusLog routes slog records to the status line while the dashboard
	// owns the terminal. Enable it whenever the default logger writes to
	// the terminal.
	StatusLog bool
	LogLevel  slog.Level

	// Output receives a piped entry, os.Stdout when nil
	Output io.Writer
}

// Run drives an interactive session over access until the user quits or
// pipes an entry. The terminal is restored before Run returns, on success
// and on error alike, and before anything is written to Output.
func Run(ctx context.Context, access bundle.Accessor, opts Options) error {
	d, err := dashboard.New(ctx, access, dashboard.WithMatch(opts.Match))
	if err != nil {
		return err
	}
	defer d.Close()

	m := NewModel(ctx, d, opts)

	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithOutput(os.Stderr),
		tea.WithContext(ctx),
		tea.WithFPS(int(time.Second / TickInterval)),
	}
	if !utils.IsTerminal(os.Stdin) {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, programOpts...)

	restoreLogger := func() {}
	if opts.StatusLog {
		prev := slog.Default()
		handler := NewLogHandler(opts.LogLevel)
		handler.SetProgram(p)
		slog.SetDefault(slog.New(handler))
		restoreLogger = func() { slog.SetDefault(prev) }
	}

	_, runErr := p.Run()
	restoreLogger()

	if runErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &bundle.IOError{Op: "running dashboard", Err: runErr}
	}
	if err := m.Err(); err != nil {
		return err
	}

	slog.Debug("Dashboard closed", "step", m.Step())

	if m.Step() != PipeFile {
		return nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return pipe(d, out, opts.Progress)
}

// pipe copies the open entry of d to out, preview first
func pipe(d *dashboard.Dashboard, out io.Writer, progress bool) error {
	name := d.SelectedName()

	stream, err := d.DetachStream()
	if errors.Is(err, dashboard.ErrNoStream) {
		slog.Info("Nothing to pipe for directory entry", "entry", name)
		return nil
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	bar := utils.NewProgress(0, name, progress && !isStderr(out))
	n, err := io.Copy(out, bar.Reader(stream))
	bar.Finish()
	if err != nil {
		return &bundle.IOError{Op: fmt.Sprintf("piping %s", name), Err: err}
	}

	slog.Debug("Piped entry", "entry", name, "size", utils.Bytes(n))
	return nil
}

func isStderr(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stderr
}
