package tui

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jchantrell/bundleview/internal/bundle"
	"github.com/jchantrell/bundleview/internal/dashboard"
	"github.com/jchantrell/bundleview/internal/utils"
)

// invalidUTF8Preview replaces previews that are not text
const invalidUTF8Preview = "Not valid UTF-8"

const (
	usageHeight  = 7 // four lines, title, two border rows
	statusHeight = 1
	boxChrome    = 3 // title plus top and bottom border
)

var (
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder())
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model
func (m *Model) View() string {
	height := m.mainHeight()

	var main string
	usage := pickerUsage
	if preview, ok := m.dashboard.Preview(); ok {
		main = m.renderPreview(preview, height)
		usage = viewerUsage
	} else {
		main = m.renderList(height)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		main,
		box("Usage", usage, m.width, usageHeight),
		m.renderStatus(),
	)
}

func (m *Model) mainHeight() int {
	return max(m.height-usageHeight-statusHeight, boxChrome+1)
}

// previewHeight is the number of content rows in the main box
func (m *Model) previewHeight() int {
	return m.mainHeight() - boxChrome
}

func (m *Model) renderList(height int) string {
	rows := height - boxChrome
	files := m.dashboard.Index().Files()
	selected := m.dashboard.Selected()

	if selected < m.listOffset {
		m.listOffset = selected
	}
	if selected >= m.listOffset+rows {
		m.listOffset = selected - rows + 1
	}

	end := min(m.listOffset+rows, len(files))
	lines := make([]string, 0, rows)
	for i := m.listOffset; i < end; i++ {
		line := "  " + files[i]
		if i == selected {
			line = "> " + selectedStyle.Render(files[i])
		}
		lines = append(lines, ansi.Truncate(line, m.width-2, "…"))
	}

	return box("Files", lines, m.width, height)
}

func (m *Model) renderPreview(preview []byte, height int) string {
	rows := height - boxChrome
	lines := m.previewLines()

	start := min(m.scrollOffset, max(len(lines)-1, 0))
	end := min(start+rows, len(lines))

	return box(m.dashboard.SelectedName(), lines[start:end], m.width, height)
}

// previewLines returns the wrapped, possibly highlighted preview
func (m *Model) previewLines() []string {
	preview, ok := m.dashboard.Preview()
	if !ok {
		return nil
	}
	return m.renderer.lines(m.dashboard.SelectedName(), preview, m.width-2)
}

func (m *Model) renderStatus() string {
	d := m.dashboard
	parts := []string{fmt.Sprintf("%d/%d", d.Selected()+1, d.Index().Len())}

	if open, ok := d.State().(*dashboard.Open); ok && open.HasStream() {
		buffered := utils.Bytes(int64(len(open.Preview())))
		if open.Exhausted() {
			parts = append(parts, buffered)
		} else {
			parts = append(parts, buffered+"+")
		}
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}

	return statusStyle.Render(ansi.Truncate(strings.Join(parts, "  "), m.width, "…"))
}

func box(title string, lines []string, width, height int) string {
	body := titleStyle.Render(ansi.Truncate(title, width-2, "…"))
	if len(lines) > 0 {
		body += "\n" + strings.Join(lines, "\n")
	}
	return boxStyle.
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		Render(body)
}

// previewRenderer turns preview bytes into display lines, remembering the
// last result so redraws without new bytes are cheap
type previewRenderer struct {
	highlight bool
	style     string

	key   renderKey
	cache []string
}

type renderKey struct {
	name  string
	size  int
	width int
}

func newPreviewRenderer(highlight bool, style string) *previewRenderer {
	if style == "" {
		style = "monokai"
	}
	return &previewRenderer{highlight: highlight, style: style}
}

func (r *previewRenderer) lines(name string, preview []byte, width int) []string {
	k := renderKey{name: name, size: len(preview), width: width}
	if r.cache != nil && r.key == k {
		return r.cache
	}

	text := r.text(name, preview)
	wrapped := lipgloss.NewStyle().Width(max(width, 1)).Render(text)

	r.key = k
	r.cache = strings.Split(wrapped, "\n")
	return r.cache
}

func (r *previewRenderer) text(name string, preview []byte) string {
	preview = trimPartialRune(preview)
	if !utf8.Valid(preview) {
		return invalidUTF8Preview
	}

	text := string(preview)
	if !r.highlight || bundle.IsDir(name) {
		return text
	}

	lexer := lexers.Match(name)
	if lexer == nil {
		return text
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, lexer.Config().Name, "terminal256", r.style); err != nil {
		return text
	}
	return buf.String()
}

// trimPartialRune drops a multi-byte rune cut off by the end of a buffering
// unit, so a partially loaded text file is not mistaken for binary data
func trimPartialRune(data []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		start := len(data) - i
		if utf8.RuneStart(data[start]) {
			if !utf8.FullRune(data[start:]) {
				return data[:start]
			}
			return data
		}
	}
	return data
}
