package config

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gobwas/glob"
)

var validLogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks every field that can be wrong independently of the
// archive being inspected
func (c *Config) Validate() error {
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level '%s': supported levels are debug, info, warn, error", c.LogLevel)
	}

	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format '%s': supported formats are text, json", c.LogFormat)
	}

	if c.EntryCacheSize < 0 {
		return fmt.Errorf("invalid entry cache size %d: must not be negative", c.EntryCacheSize)
	}

	if c.Highlight {
		if _, ok := styles.Registry[c.HighlightStyle]; !ok {
			return fmt.Errorf("unknown highlight style '%s'", c.HighlightStyle)
		}
	}

	if c.Match != "" {
		if _, err := glob.Compile(c.Match, '/'); err != nil {
			return fmt.Errorf("invalid match pattern '%s': %w", c.Match, err)
		}
	}

	return nil
}

// SlogLevel returns the configured level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if level, ok := validLogLevels[c.LogLevel]; ok {
		return level
	}
	return slog.LevelInfo
}
