// Package logging provides structured logging for the waterborne CLI.
//
// It wraps log/slog so every component logs the same way. Logs go to stderr
// so that reports printed on stdout stay clean.
//
//	logging.Init(slog.LevelInfo, false)
//	log := logging.Component("eda")
//	log.Info("chart written", "step", "heatmap", "path", p)
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init installs the global logger with the given level and format, writing
// to stderr.
func Init(level slog.Level, jsonFormat bool) {
	InitWriter(os.Stderr, level, jsonFormat)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level slog.Level, jsonFormat bool) {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}
	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	InitWithHandler(handler)
}

// InitWithHandler installs a custom handler. Useful in tests.
func InitWithHandler(h slog.Handler) {
	l := slog.New(h)
	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

func current() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(slog.LevelInfo, false)
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Component returns a logger tagged with component=name.
func Component(name string) *slog.Logger {
	return current().With("component", name)
}

type contextKey int

const contextKeyRunID contextKey = iota

// ContextWithRunID tags ctx with the id of the current analysis run.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRunID, id)
}

// RunID returns the run id stored in ctx, if any.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRunID).(string)
	return id
}

// WithContext returns the component logger enriched with the run id in ctx.
func WithContext(ctx context.Context, component string) *slog.Logger {
	l := Component(component)
	if id := RunID(ctx); id != "" {
		l = l.With("run_id", id)
	}
	return l
}
