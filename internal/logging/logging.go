// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options selects the handler built by Setup.
type Options struct {
	Level  slog.Level
	Format string // "text" or "json"
	// Dir and File name the operator log. An empty File logs to Stdout only.
	Dir    string
	File   string
	Stdout io.Writer
}

// New returns a logger writing to w with the given level and format.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs a default logger that writes every record to stdout and,
// when a file is named, appends it to that file as well. The returned
// function closes the file.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	out := stdout
	closer := func() error { return nil }
	if opts.File != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		path := filepath.Join(opts.Dir, opts.File)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(stdout, f)
		closer = f.Close
	}

	logger := New(out, opts.Level, opts.Format)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", opts.Level.String(), "format", opts.Format, "file", opts.File)
	return logger, closer, nil
}
