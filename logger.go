// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false, so disabled calls
// never format their attributes.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var silent = slog.New(nopHandler{})

// current is swapped atomically; registries read it on every record.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger sets the logger shared by gres and the resource packages.
// Nothing is logged until it is called; nil restores silence.
//
// Levels:
//   - [slog.LevelDebug]: registration, erasure, destruction, GPU uploads
//   - [slog.LevelInfo]: device and scene lifecycle, manifest loads
//   - [slog.LevelWarn]: replaced names, owner count underflow
//
// A registry created with WithLogger logs to its own logger instead.
//
//	gres.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//		&slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the shared logger.
func Logger() *slog.Logger {
	return current.Load()
}
