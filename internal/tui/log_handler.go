package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a log record into the model's status line
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// LogHandler is a slog.Handler that delivers records to a running program
// instead of writing to the terminal the dashboard is drawn on. Records
// arriving before SetProgram is called are dropped.
//
// Handlers derived via WithAttrs and WithGroup share the program pointer.
type LogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
	groups  []string
}

// NewLogHandler creates a handler for records at or above level
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{
		level:   level,
		program: &atomic.Pointer[tea.Program]{},
	}
}

// SetProgram sets the program receiving records, safe from any goroutine
func (h *LogHandler) SetProgram(p *tea.Program) {
	h.program.Store(p)
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	p := h.program.Load()
	if p == nil {
		return nil
	}

	var parts []string
	for _, attr := range h.attrs {
		parts = append(parts, h.format(attr))
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, h.format(attr))
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	// Send blocks until the program reads it, so it must not run on the
	// goroutine executing Update.
	go p.Send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

func (h *LogHandler) format(attr slog.Attr) string {
	k := attr.Key
	if len(h.groups) > 0 {
		k = strings.Join(h.groups, ".") + "." + k
	}
	return fmt.Sprintf("%s=%s", k, attr.Value)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{
		level:   h.level,
		program: h.program,
		attrs:   append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
		groups:  h.groups,
	}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &LogHandler{
		level:   h.level,
		program: h.program,
		attrs:   h.attrs,
		groups:  append(h.groups[:len(h.groups):len(h.groups)], name),
	}
}
