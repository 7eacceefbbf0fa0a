// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"log/slog"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.logger != nil {
		t.Error("default logger should be nil (package logger)")
	}
	if o.capacity != 0 {
		t.Errorf("default capacity = %d, want 0", o.capacity)
	}
}

func TestOptions(t *testing.T) {
	l := slog.Default()
	o := defaultOptions()
	for _, opt := range []Option{WithLogger(l), WithCapacity(32), WithCapacity(-1)} {
		opt(&o)
	}
	if o.logger != l {
		t.Error("WithLogger did not set the logger")
	}
	if o.capacity != 32 {
		t.Errorf("capacity = %d, want 32 (negative ignored)", o.capacity)
	}
}
