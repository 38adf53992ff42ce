// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Setup(logLevel string) {
	SetupWithFormat(logLevel, FormatText)
}

// SetupWithFormat installs the default logger writing to stderr.
func SetupWithFormat(logLevel string, format Format) {
	slog.SetDefault(New(os.Stderr, logLevel, format))
}

func New(w io.Writer, logLevel string, format Format) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(logLevel)}

	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, options))
	}

	return slog.New(slog.NewTextHandler(w, options))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

// NewTestLogger discards everything below error.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
