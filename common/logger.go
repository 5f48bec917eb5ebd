// Package common contains small helpers shared by every engine package: column-major matrix
// math, byte views over slices for GPU hand-off, generic utilities and the engine logger.
package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards every record. Enabled reports false so
// callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by every engine package.
// By default the engine is silent. Passing nil restores the silent default.
// Safe for concurrent use.
//
// Levels used by the engine:
//   - slog.LevelDebug: per-frame diagnostics (inactive casters, loader cache fills)
//   - slog.LevelInfo: profiler summaries
//   - slog.LevelWarn: recoverable problems (caster initialization or evaluation failures)
//   - slog.LevelError: a frame panic that stopped the engine loop
//
// Parameters:
//   - l: the logger to install, or nil to disable logging
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the logger currently installed with SetLogger.
//
// Returns:
//   - *slog.Logger: the active logger (never nil)
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
