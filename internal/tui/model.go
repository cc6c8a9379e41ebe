package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jchantrell/bundleview/internal/dashboard"
)

// TickInterval bounds how often the program redraws
const TickInterval = 10 * time.Millisecond

// Step is the outcome of handling one input event
type Step int

const (
	// Continue keeps the dashboard running
	Continue Step = iota
	// Exit leaves the dashboard without further action
	Exit
	// PipeFile leaves the dashboard and streams the selected entry to stdout
	PipeFile
)

func (s Step) String() string {
	switch s {
	case Continue:
		return "continue"
	case Exit:
		return "exit"
	case PipeFile:
		return "pipe"
	default:
		return "unknown"
	}
}

// Model is the bubbletea model driving a Dashboard. Every key event runs
// its Dashboard operation to completion inside Update, so at most one read
// is ever in flight.
type Model struct {
	ctx       context.Context
	dashboard *dashboard.Dashboard
	keys      KeyMap
	renderer  *previewRenderer

	width  int
	height int

	listOffset   int
	scrollOffset int

	status string
	step   Step
	err    error
}

// NewModel creates a model over an already constructed dashboard
func NewModel(ctx context.Context, d *dashboard.Dashboard, opts Options) *Model {
	return &Model{
		ctx:       ctx,
		dashboard: d,
		keys:      DefaultKeyMap,
		renderer:  newPreviewRenderer(opts.Highlight, opts.HighlightStyle),
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Step returns how the session ended, or Continue while it is running
func (m *Model) Step() Step {
	return m.step
}

// Err returns the error that ended the session, if any
func (m *Model) Err() error {
	return m.err
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case logRecordMsg:
		m.status = msg.Summary
		return m, nil
	case tea.KeyMsg:
		step, err := m.handleKey(msg)
		if err != nil {
			m.err = err
			m.step = Exit
			return m, tea.Quit
		}
		if step != Continue {
			m.step = step
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (Step, error) {
	d := m.dashboard
	before := d.Selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return Exit, nil
	case key.Matches(msg, m.keys.FastUp):
		if err := d.SelectUp(m.ctx, FastStep); err != nil {
			return Continue, err
		}
	case key.Matches(msg, m.keys.FastDown):
		if err := d.SelectDown(m.ctx, FastStep); err != nil {
			return Continue, err
		}
	case key.Matches(msg, m.keys.Up):
		if err := d.SelectUp(m.ctx, 1); err != nil {
			return Continue, err
		}
	case key.Matches(msg, m.keys.Down):
		if err := d.SelectDown(m.ctx, 1); err != nil {
			return Continue, err
		}
	case key.Matches(msg, m.keys.Toggle):
		m.scrollOffset = 0
		if err := d.ToggleOpen(m.ctx); err != nil {
			return Continue, err
		}
	case key.Matches(msg, m.keys.Pipe):
		if err := d.OpenAndBuffer(m.ctx); err != nil {
			return Continue, err
		}
		return PipeFile, nil
	case key.Matches(msg, m.keys.PageUp):
		m.scrollOffset -= m.previewHeight()
		if m.scrollOffset < 0 {
			m.scrollOffset = 0
		}
	case key.Matches(msg, m.keys.PageDown):
		if err := m.scrollDown(); err != nil {
			return Continue, err
		}
	}

	if d.Selected() != before {
		m.scrollOffset = 0
	}
	return Continue, nil
}

// scrollDown advances the preview a page. Reaching the end of what is
// buffered pulls in the next unit of the stream.
func (m *Model) scrollDown() error {
	if !m.dashboard.IsOpen() {
		return nil
	}

	page := m.previewHeight()
	lines := len(m.previewLines())
	if m.scrollOffset+page >= lines {
		if open, ok := m.dashboard.State().(*dashboard.Open); ok && !open.Exhausted() {
			if err := m.dashboard.BufferMore(m.ctx); err != nil {
				return err
			}
			lines = len(m.previewLines())
		}
	}

	m.scrollOffset += page
	if maxOffset := lines - page; m.scrollOffset > maxOffset {
		m.scrollOffset = max(maxOffset, 0)
	}
	return nil
}
