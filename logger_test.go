// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDefaultLoggerDiscards(t *testing.T) {
	var h slog.Handler = nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) || Logger().Enabled(context.Background(), level) {
			t.Errorf("default logger enabled at %v", level)
		}
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("kind", "mesh")}).(nopHandler); !ok {
		t.Error("WithAttrs left the nop handler")
	}
	if _, ok := h.WithGroup("gpu").(nopHandler); !ok {
		t.Error("WithGroup left the nop handler")
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)
	if Logger() != custom {
		t.Fatal("Logger() is not the logger passed to SetLogger")
	}
	Logger().Info("scene loaded", "built", 3)
	if !strings.Contains(buf.String(), "built=3") {
		t.Errorf("record not written: %q", buf.String())
	}

	SetLogger(nil)
	if l := Logger(); l == nil || l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}

func TestRegistryLogsThroughPackageLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	reg := NewRegistry[*testCamera]("camera")
	h, err := reg.Construct("cam1", newTestCamera(nil))
	if err != nil {
		t.Fatalf("Construct() = %v", err)
	}
	defer h.Drop()

	if !strings.Contains(buf.String(), "gres: registered") {
		t.Errorf("expected registration record, got: %s", buf.String())
	}
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var pkg, own bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&pkg, &slog.HandlerOptions{Level: slog.LevelDebug})))

	reg := NewRegistry[*testCamera]("camera",
		WithLogger(slog.New(slog.NewTextHandler(&own, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	h, err := reg.Construct("cam1", newTestCamera(nil))
	if err != nil {
		t.Fatalf("Construct() = %v", err)
	}
	defer h.Drop()

	if !strings.Contains(own.String(), "cam1") {
		t.Errorf("registry logger got no record: %s", own.String())
	}
	if strings.Contains(pkg.String(), "gres: registered") {
		t.Errorf("package logger should not see registry records: %s", pkg.String())
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	reg := NewRegistry[*testCamera]("camera")
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h, err := reg.Construct(fmt.Sprintf("cam%d", i), newTestCamera(nil))
			if err != nil {
				t.Error(err)
				return
			}
			h.Drop()
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})))
			SetLogger(nil)
		}()
	}
	wg.Wait()
	if got := reg.Len(); got != 50 {
		t.Errorf("Len() = %d, want 50", got)
	}
}

func BenchmarkAliasSilentLogger(b *testing.B) {
	reg := NewRegistry[*testCamera]("camera")
	h, err := reg.Construct("cam", newTestCamera(nil))
	if err != nil {
		b.Fatal(err)
	}
	defer h.Drop()
	b.ReportAllocs()
	for b.Loop() {
		a := reg.MustAlias("cam")
		a.Drop()
	}
}
