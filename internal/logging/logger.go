// Package logging is the process-wide diagnostic logger. Records are slog
// text lines; anything meant for the user goes through internal/console.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	level  = new(slog.LevelVar)
	logger *slog.Logger
)

// Quiet until the command layer has read the configured level.
func init() {
	SetupLogger(os.Stderr, slog.LevelWarn)
}

// ParseLevel reads a level name such as "debug" or "WARN". An empty name
// means slog.LevelWarn.
func ParseLevel(name string) (slog.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return slog.LevelWarn, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: use debug, info, warn or error", name)
	}
	return l, nil
}

// SetupLogger sends records at or above lvl to w.
func SetupLogger(w io.Writer, lvl slog.Level) {
	level.Set(lvl)
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// OpenLogFile opens path for appending, creating parent directories as
// needed. The caller owns the returned file.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// MaskSensitive hides all but the first four characters of a secret.
func MaskSensitive(value string) string {
	if value == "" {
		return "<not set>"
	}
	if len(value) <= 4 {
		return "<set>"
	}
	return value[:4] + "..." + strings.Repeat("*", 3)
}
