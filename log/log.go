// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's structured logger. Package level loggers are
// created with WithContext at init time and resolve the root handler on every call, so that a
// handler installed later by the command line driver applies to all of them.
package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, re-exported for callers that configure verbosity.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs to the root handler.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type ctxLogger struct {
	ctx []any
}

// WithContext returns a logger that prefixes every record with ctx.
func WithContext(ctx ...any) Logger {
	return &ctxLogger{ctx: ctx}
}

func (l *ctxLogger) merge(ctx []any) []any {
	if len(ctx) == 0 {
		return l.ctx
	}
	out := make([]any, 0, len(l.ctx)+len(ctx))
	return append(append(out, l.ctx...), ctx...)
}

func (l *ctxLogger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.merge(ctx)...) }
func (l *ctxLogger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.merge(ctx)...) }
func (l *ctxLogger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.merge(ctx)...) }
func (l *ctxLogger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.merge(ctx)...) }
func (l *ctxLogger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.merge(ctx)...) }

func (l *ctxLogger) With(ctx ...any) Logger {
	return &ctxLogger{ctx: l.merge(ctx)}
}

// SetDefault installs h as the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// NewTerminalHandler returns a human readable handler filtered at the given verbosity.
func NewTerminalHandler(w io.Writer, level slog.Level, useColor bool) slog.Handler {
	h := ethlog.NewGlogHandler(ethlog.NewTerminalHandler(w, useColor))
	h.Verbosity(level)
	return h
}

// NewJSONHandler returns a handler that writes one JSON object per record.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	h := ethlog.NewGlogHandler(ethlog.JSONHandler(w))
	h.Verbosity(level)
	return h
}

// FromVerbosity maps the legacy 0..5 verbosity flag to a level.
func FromVerbosity(v int) slog.Level {
	return ethlog.FromLegacyLevel(v)
}
