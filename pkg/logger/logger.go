package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New constructs the JSON slog logger shared by every service component.
func New() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"), slog.LevelInfo)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "skinscan")
}

// NewCLI builds a text logger for command line tools. It stays quiet below
// warn unless LOG_LEVEL asks for more.
func NewCLI(w io.Writer) *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"), slog.LevelWarn)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(level string, fallback slog.Level) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
