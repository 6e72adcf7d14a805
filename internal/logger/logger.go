// Package logger holds the process-wide structured logger for richscan.
// It is a thin wrapper around log/slog so commands can log through
// package-level functions without threading a logger value everywhere.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config selects where and how log records are written.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text or json
	Output string // stderr, stdout, or a file path
}

var (
	mu      sync.RWMutex
	slogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// Init replaces the process logger according to cfg. Diagnostics default
// to stderr so the command output streams stay machine-parseable.
func Init(cfg Config) error {
	var w io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		w = f
	}
	set(w, cfg.Level, cfg.Format)
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily useful
// for tests.
func InitWithWriter(w io.Writer, level, format string) {
	set(w, level, format)
}

func set(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	slogger = slog.New(h)
	mu.Unlock()
}

// parseLevel maps a level name to its slog value. Unknown names fall back
// to info.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with structured fields.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level with structured fields.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level with structured fields.
func Error(msg string, args ...any) { get().Error(msg, args...) }

// With returns a logger with pre-bound attributes.
func With(args ...any) *slog.Logger { return get().With(args...) }
