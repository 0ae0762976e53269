package utils

import (
	"log/slog"
	"os"
)

// NewLogger returns the JSON logger shared by the whole process.
func NewLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(h)
}
