// Package logger builds the structured logger of the service.
package logger

import (
	"io"
	"log/slog"
)

// New returns a JSON logger writing records at level and above to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
