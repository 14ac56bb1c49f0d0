package slogutil

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a new console-format slog.Logger.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewConsoleHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger creates a logger that discards all output.
// Useful for tests or when logging should be completely suppressed.
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewConsoleHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// Options configures NewOpsLogger.
type Options struct {
	LogPath      string     // NDJSON log file; empty disables file logging
	Level        slog.Level // file level
	MaxSize      int64      // rotation threshold; 0 uses DefaultMaxLogSize
	Console      io.Writer  // optional human-readable sink (stderr)
	ConsoleLevel slog.Level
}

// NewOpsLogger builds the application logger: NDJSON to a rotating file,
// optionally teed to a console writer. A log file that cannot be opened is
// skipped rather than reported. The returned closer is never nil.
func NewOpsLogger(opts Options) (*slog.Logger, io.Closer) {
	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}

	if opts.LogPath != "" {
		maxSize := opts.MaxSize
		if maxSize <= 0 {
			maxSize = DefaultMaxLogSize
		}
		if rf, err := OpenRotatingFile(opts.LogPath, maxSize); err == nil {
			handlers = append(handlers, NewNDJSONHandler(rf, &slog.HandlerOptions{Level: opts.Level}))
			closer = rf
		}
	}

	if opts.Console != nil {
		handlers = append(handlers, NewConsoleHandler(opts.Console, &slog.HandlerOptions{Level: opts.ConsoleLevel}))
	}

	switch len(handlers) {
	case 0:
		return NewDiscardLogger(), closer
	case 1:
		return slog.New(handlers[0]), closer
	default:
		return NewTeeLogger(handlers...), closer
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level.
// - quiet=true: returns a level that suppresses all logs
// - verbosity=0: warn (default for CLI)
// - verbosity=1: info
// - verbosity>=2: debug
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return slog.Level(100)
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// TeeHandler writes logs to multiple handlers.
type TeeHandler struct {
	handlers []slog.Handler
}

// NewTeeHandler creates a handler that writes to all provided handlers.
func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

// Enabled returns true if any handler is enabled for the level.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes the record to all handlers.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// WithAttrs returns a new TeeHandler with attributes added to all handlers.
func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: newHandlers}
}

// WithGroup returns a new TeeHandler with the group added to all handlers.
func (t *TeeHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: newHandlers}
}

// NewTeeLogger creates a logger that writes to multiple destinations.
func NewTeeLogger(handlers ...slog.Handler) *slog.Logger {
	return slog.New(NewTeeHandler(handlers...))
}
