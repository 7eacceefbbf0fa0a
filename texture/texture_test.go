// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gres/gpu"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 255, A: 255}
			if (x+y)%2 == 1 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func encode(t *testing.T, enc func(io.Writer, image.Image) error, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := enc(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestDevice(t *testing.T) *gpu.Device {
	t.Helper()
	dev, err := gpu.NewHeadless()
	if err != nil {
		t.Fatalf("NewHeadless() = %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

func TestDecodeFormats(t *testing.T) {
	src := checker(4, 3)
	tests := []struct {
		format string
		enc    func(io.Writer, image.Image) error
		exact  bool
	}{
		{"png", png.Encode, true},
		{"bmp", bmp.Encode, true},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }, true},
		{"jpeg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 90}) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			reg := NewRegistry()
			h, err := reg.Construct("tex", FromBytes(encode(t, tt.enc, src)))
			if err != nil {
				t.Fatal(err)
			}
			defer h.Drop()

			tex := h.Get()
			if got := tex.Format(); got != tt.format {
				t.Errorf("Format() = %q, want %q", got, tt.format)
			}
			if w, hgt := tex.Size(); w != 4 || hgt != 3 {
				t.Errorf("Size() = %dx%d, want 4x3", w, hgt)
			}
			if got := len(tex.Pixels()); got != 4*3*4 {
				t.Errorf("len(Pixels()) = %d", got)
			}
			if tt.exact {
				if got := tex.Image().RGBAAt(1, 0); got != (color.RGBA{B: 255, A: 255}) {
					t.Errorf("pixel (1,0) = %v", got)
				}
			}
		})
	}
}

func TestFromBytesErrors(t *testing.T) {
	if _, err := FromBytes(nil)("x"); !errors.Is(err, ErrEmptyData) {
		t.Errorf("FromBytes(nil) = %v, want ErrEmptyData", err)
	}
	if _, err := FromBytes([]byte("not an image"))("x"); !errors.Is(err, image.ErrFormat) {
		t.Errorf("FromBytes(garbage) = %v, want image.ErrFormat", err)
	}
	if _, err := Empty(0, 4)("x"); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Empty(0, 4) = %v, want ErrInvalidSize", err)
	}
}

func TestWithMaxSize(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{64, 32, 16, 16, 8},
		{32, 64, 16, 8, 16},
		{10, 10, 16, 10, 10},
		{100, 1, 10, 10, 1},
		{64, 32, 0, 64, 32},
	}
	for _, tt := range tests {
		tex, err := FromImage(checker(tt.w, tt.h), WithMaxSize(tt.max))("t")
		if err != nil {
			t.Fatal(err)
		}
		if w, h := tex.Size(); w != tt.wantW || h != tt.wantH {
			t.Errorf("%dx%d max %d: Size() = %dx%d, want %dx%d", tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFromImageOffsetBounds(t *testing.T) {
	src := checker(8, 8).SubImage(image.Rect(2, 2, 6, 5))
	tex, err := FromImage(src)("sub")
	if err != nil {
		t.Fatal(err)
	}
	img := tex.Image()
	if img.Bounds().Min != (image.Point{}) {
		t.Errorf("Bounds().Min = %v, want origin", img.Bounds().Min)
	}
	// (2,2) is red in the checker and becomes (0,0).
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
}

func TestFromFileAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albedo.png")
	if err := os.WriteFile(path, encode(t, png.Encode, checker(2, 2)), 0o600); err != nil {
		t.Fatal(err)
	}
	tex, err := FromFile(path)("albedo")
	if err != nil {
		t.Fatal(err)
	}
	if tex.Path() != path {
		t.Errorf("Path() = %q", tex.Path())
	}

	if err := os.WriteFile(path, encode(t, png.Encode, checker(6, 4)), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := tex.Reload(); err != nil {
		t.Fatalf("Reload() = %v", err)
	}
	if w, h := tex.Size(); w != 6 || h != 4 {
		t.Errorf("after Reload Size() = %dx%d, want 6x4", w, h)
	}

	if err := os.WriteFile(path, []byte("broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := tex.Reload(); err == nil {
		t.Fatal("Reload of a broken file succeeded")
	}
	if w, h := tex.Size(); w != 6 || h != 4 {
		t.Errorf("failed Reload replaced the image: %dx%d", w, h)
	}

	mem, err := Empty(1, 1)("mem")
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.Reload(); !errors.Is(err, ErrNoSource) {
		t.Errorf("Reload() without file = %v, want ErrNoSource", err)
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.png"))("m"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("FromFile(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestGPUUpload(t *testing.T) {
	dev := newTestDevice(t)
	reg := NewRegistry()

	h, err := reg.Construct("albedo", FromImage(checker(8, 4), WithDevice(dev), WithLabel("albedo_rgba")))
	if err != nil {
		t.Fatal(err)
	}
	g := h.Get().GPU()
	if g == nil {
		t.Fatal("GPU() = nil after construction with a device")
	}
	if g.Label() != "albedo_rgba" {
		t.Errorf("Label() = %q", g.Label())
	}
	if w, hgt := g.Size(); w != 8 || hgt != 4 {
		t.Errorf("GPU Size() = %dx%d", w, hgt)
	}

	// Re-upload replaces the GPU texture instead of leaking it.
	if err := h.Get().Upload(dev); err != nil {
		t.Fatal(err)
	}
	if got := dev.Stats().Textures; got != 1 {
		t.Errorf("Stats().Textures = %d after re-upload, want 1", got)
	}

	if err := h.Release(false); err != nil {
		t.Fatal(err)
	}
	if got := dev.Stats().Textures; got != 0 {
		t.Errorf("Stats().Textures = %d after release, want 0", got)
	}
}

func TestUploadClosedDevice(t *testing.T) {
	dev := newTestDevice(t)
	tex, err := Empty(2, 2)("t")
	if err != nil {
		t.Fatal(err)
	}
	dev.Close()
	if err := tex.Upload(dev); !errors.Is(err, gpu.ErrClosed) {
		t.Errorf("Upload() = %v, want gpu.ErrClosed", err)
	}
	if tex.GPU() != nil {
		t.Error("failed upload left a GPU texture")
	}
	tex.Destroy() // no GPU texture: no-op
}
