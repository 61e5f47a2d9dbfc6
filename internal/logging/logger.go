// Package logging wraps log/slog with the global-logger convenience
// pattern the rest of the engine relies on.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Config controls how the process-wide logger is built.
type Config struct {
	Debug      bool      // DEBUG level + source locations when true
	JSONFormat bool      // JSON handler instead of text handler
	Output     io.Writer // defaults to os.Stderr when nil
}

var (
	global *slog.Logger
	once   sync.Once
)

// Initialize builds the process-wide logger exactly once. Later calls
// are no-ops.
func Initialize(cfg Config) {
	once.Do(func() {
		global = build(cfg)
	})
}

func build(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Debug,
	}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// Default returns a sensible default logger (text, info level) if
// Initialize was never called, without mutating global state.
func Default() *slog.Logger {
	if global != nil {
		return global
	}
	return build(Config{})
}

// With returns a component-scoped child logger, e.g.
// logging.With("component", "temporal").
func With(args ...any) *slog.Logger {
	return Default().With(args...)
}
