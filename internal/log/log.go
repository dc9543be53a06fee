// Package log provides category-tagged structured logging for lineage.
//
// Logging is disabled until Init is called. Commands write their results to
// stdout, so log output always goes to a file (or a writer supplied by tests)
// and never to the terminal.
//
// Usage:
//
//	log.Debug(log.CatGit, "running rev-list", "dir", dir)
//	log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Category groups log lines by subsystem.
type Category string

const (
	CatGit    Category = "git"
	CatWalk   Category = "walk"
	CatDB     Category = "db"
	CatConfig Category = "config"
	CatCache  Category = "cache"
	CatWatch  Category = "watch"
	CatTrace  Category = "trace"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.DiscardHandler)
)

// Init opens (or creates) the log file at path and routes all logging to it.
// When debug is false only Info and above are written.
// The returned function closes the file and disables logging again.
func Init(path string, debug bool) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: path comes from config
	if err != nil {
		return nil, err
	}
	SetOutput(f, debug)
	return func() error {
		Disable()
		return f.Close()
	}, nil
}

// SetOutput routes logging to w. Used by Init and by tests.
func SetOutput(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	mu.Lock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

// Disable discards all further logging.
func Disable() {
	mu.Lock()
	logger = slog.New(slog.DiscardHandler)
	mu.Unlock()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message.
func Debug(cat Category, msg string, kv ...any) {
	current().Debug(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Info logs an informational message.
func Info(cat Category, msg string, kv ...any) {
	current().Info(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Warn logs a warning.
func Warn(cat Category, msg string, kv ...any) {
	current().Warn(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// Error logs an error message without an error value.
func Error(cat Category, msg string, kv ...any) {
	current().Error(msg, append([]any{"cat", string(cat)}, kv...)...)
}

// ErrorErr logs msg with err attached under the "error" key.
func ErrorErr(cat Category, msg string, err error, kv ...any) {
	args := append([]any{"cat", string(cat), "error", err}, kv...)
	current().Error(msg, args...)
}
