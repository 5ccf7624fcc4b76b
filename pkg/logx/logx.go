// Package logx builds the structured loggers used by the demo.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-errors/errors"
)

// Options select the log destination and encoding.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is text or json.
	Format string
	// File receives the log instead of stderr when set.
	File string
	// Silent discards the log when no file is given, for when a terminal panel
	// owns stderr.
	Silent bool
}

// nopHandler is a slog.Handler that discards every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Nop returns a logger that discards all output.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, errors.Errorf("logx: unknown level %q", s)
	}
	return lvl, nil
}

// New builds a logger. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	switch {
	case opts.File != "":
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.WrapPrefix(err, "logx: open log file", 0)
		}
		w, closer = f, f
	case opts.Silent:
		return Nop(), closer, nil
	}

	return NewWriter(w, opts.Format, lvl), closer, nil
}

// NewWriter builds a text or JSON logger writing to w.
func NewWriter(w io.Writer, format string, lvl slog.Level) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// IsErr logs err at lvl and reports whether it was non-nil.
func IsErr(err error, logger *slog.Logger, lvl slog.Level, args ...any) bool {
	if err == nil {
		return false
	}
	if logger != nil {
		logger.Log(context.Background(), lvl, err.Error(), args...)
	}
	return true
}
