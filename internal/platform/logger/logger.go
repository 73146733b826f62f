package logger

import (
	"log/slog"
	"os"
)

// New returns a structured logger writing to stderr, keeping stdout free for
// record output.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
