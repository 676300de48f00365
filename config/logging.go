package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger builds the process logger. The returned func releases the log file,
// if any.
func (c *Config) Logger() (*slog.Logger, func() error, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("bad log level %q: %w", c.LogLevel, err)
	}

	var (
		w        io.Writer = os.Stderr
		closeLog           = func() error { return nil }
	)
	if c.LogFile != "" {
		f := &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		w, closeLog = f, f.Close
	}

	opts := &slog.HandlerOptions{Level: l}
	var h slog.Handler
	switch strings.ToLower(c.LogFormat) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closeLog, nil
}

