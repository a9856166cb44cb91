package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pouriya/restcommander-sub000/command/runner"
)

// LevelOff is above every level a record can carry.
const LevelOff = slog.Level(1 << 10)

// Name returns the normalized level name.
func (l *Logging) Name() (string, error) {
	switch name := strings.ToLower(strings.TrimSpace(l.LevelName)); name {
	case "":
		return "info", nil
	case "warn", "warning":
		return "warning", nil
	case "trace", "debug", "info", "error", "off":
		return name, nil
	default:
		return "", fmt.Errorf("unknown log level name %q", l.LevelName)
	}
}

// Level maps the level name to a slog level.
func (l *Logging) Level() (slog.Level, error) {
	name, err := l.Name()
	if err != nil {
		return 0, err
	}
	switch name {
	case "trace":
		return runner.LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off":
		return LevelOff, nil
	}
	return slog.LevelInfo, nil
}

// NewLogger creates a text logger writing to w at the configured level.
func (l *Logging) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey && attr.Value.Any() == runner.LevelTrace {
				attr.Value = slog.StringValue("TRACE")
			}
			return attr
		},
	}))
}
