// Package logging builds the logrus loggers shared by the emulator packages.
package logging

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ErrInvalidFormat is returned for an unknown log format name.
var ErrInvalidFormat = errors.New("invalid log format")

// Options configures New.
type Options struct {
	Level  string // logrus level name, e.g. "info" or "trace"
	Format string // "text" or "json"
	Output io.Writer
	Color  bool // colour text output, normally only on a terminal
}

// New creates a logger from opts. Text output follows the compact layout
// used for bus diagnostics: no timestamps, no field sorting, no quoting.
func New(opts Options) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	l := logrus.New()
	l.SetLevel(level)
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	}

	switch opts.Format {
	case "", "text":
		l.Formatter = &logrus.TextFormatter{
			DisableColors:    !opts.Color,
			ForceColors:      opts.Color,
			DisableTimestamp: true,
			DisableSorting:   true,
			DisableQuote:     true,
		}
	case "json":
		l.Formatter = &logrus.JSONFormatter{DisableTimestamp: true}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, opts.Format)
	}

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}
