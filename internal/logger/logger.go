// Package logger builds the structured loggers shared by all components.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Config selects the log level and destination.
// An empty File logs to stderr.
type Config struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// New creates a logger writing to w with timestamps and caller reporting.
// The writer defaults to os.Stderr and the level to info.
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
	if level == "" {
		return l, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	l.SetLevel(lvl)
	return l, nil
}

// Open creates the logger described by cfg. The returned closer releases
// the log file and is a no-op for stderr.
func Open(cfg Config) (*log.Logger, io.Closer, error) {
	if cfg.File == "" {
		l, err := New(os.Stderr, cfg.Level)
		return l, nopCloser{}, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	l, err := New(f, cfg.Level)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return l, f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Component returns a child of l tagged with the component name,
// or a discard logger when l is nil.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l.With("component", name)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
