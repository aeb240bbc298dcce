package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns the process JSON logger writing to stdout.
func New(level slog.Level, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, env)
}

// NewWithWriter is New with an explicit sink, used by tests and the CLI.
func NewWithWriter(w io.Writer, level slog.Level, env string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})
	return slog.New(handler).With("service", "accredis", "env", env)
}
