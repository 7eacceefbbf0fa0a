// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture provides the Texture resource kind: decoded RGBA8
// images, optionally uploaded as sampled GPU textures.
//
// Decoding goes through image.Decode; PNG, JPEG, BMP, TIFF and WebP are
// registered by this package.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres"
	"github.com/gogpu/gres/gpu"
	_ "golang.org/x/image/bmp" // register decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Kind is the registry kind name of textures.
const Kind = "texture"

// Texture errors.
var (
	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("texture: empty data")

	// ErrNoSource is returned by Reload for textures not loaded from a file.
	ErrNoSource = errors.New("texture: no source file")

	// ErrInvalidSize is returned for zero-sized images.
	ErrInvalidSize = errors.New("texture: invalid size")
)

type (
	// Handle is a shared handle to a registered Texture.
	Handle = gres.Handle[*Texture]
	// Registry is the directory of textures.
	Registry = gres.Registry[*Texture]
)

// NewRegistry creates an empty texture registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Texture](Kind, opts...)
}

// Texture is an RGBA8 image with an optional GPU copy.
//
// Texture is safe for concurrent use.
type Texture struct {
	name string

	mu     sync.Mutex
	path   string
	format string
	img    *image.RGBA
	opts   loadOptions
	gpu    *gpu.Texture
}

// FromFile returns a constructor decoding the image at path.
func FromFile(path string, opts ...LoadOption) gres.Constructor[*Texture] {
	return func(name string) (*Texture, error) {
		t := &Texture{name: name, path: path, opts: newLoadOptions(opts)}
		if err := t.load(); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// FromBytes returns a constructor decoding encoded image data.
func FromBytes(data []byte, opts ...LoadOption) gres.Constructor[*Texture] {
	return func(name string) (*Texture, error) {
		if len(data) == 0 {
			return nil, ErrEmptyData
		}
		t := &Texture{name: name, opts: newLoadOptions(opts)}
		img, format, err := decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		t.format = format
		if err := t.set(img); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// FromImage returns a constructor converting img. A zero-origin
// *image.RGBA is used as is, without a copy.
func FromImage(img image.Image, opts ...LoadOption) gres.Constructor[*Texture] {
	return func(name string) (*Texture, error) {
		t := &Texture{name: name, format: "image", opts: newLoadOptions(opts)}
		if err := t.set(img); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// Empty returns a constructor for a transparent width x height texture.
func Empty(width, height int, opts ...LoadOption) gres.Constructor[*Texture] {
	return FromImage(image.NewRGBA(image.Rect(0, 0, width, height)), opts...)
}

func decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("texture: decode: %w", err)
	}
	return img, format, nil
}

func (t *Texture) load() error {
	f, err := os.Open(filepath.Clean(t.path))
	if err != nil {
		return fmt.Errorf("texture: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, format, err := decode(f)
	if err != nil {
		return fmt.Errorf("%w (%s)", err, t.path)
	}
	t.format = format
	return t.set(img)
}

// set converts img to RGBA, applying the max size, and uploads it when a
// device was configured.
func (t *Texture) set(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %q is %dx%d", ErrInvalidSize, t.name, b.Dx(), b.Dy())
	}
	t.img = toRGBA(img, t.opts.maxSize)
	if t.opts.device != nil {
		return t.uploadLocked(t.opts.device)
	}
	return nil
}

// toRGBA returns img as a zero-origin RGBA image, scaled down with
// Catmull-Rom when its longer side exceeds maxSize.
func toRGBA(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && max(w, h) > maxSize {
		if w >= h {
			w, h = maxSize, max(1, h*maxSize/w)
		} else {
			w, h = max(1, w*maxSize/h), maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*w {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Name returns the texture name.
func (t *Texture) Name() string { return t.name }

// Path returns the source file, or "" if the texture was not loaded from
// a file.
func (t *Texture) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.path
}

// Format returns the decoder name ("png", "jpeg", ...), or "image" for
// textures built from an image.Image.
func (t *Texture) Format() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.format
}

// Size returns the size of the decoded (possibly scaled) image.
func (t *Texture) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the decoded image. The image is shared with the texture;
// call Upload after modifying it.
func (t *Texture) Image() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Pixels returns the tightly packed RGBA8 rows of the image.
func (t *Texture) Pixels() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img.Pix
}

// GPU returns the GPU texture, or nil if the texture was never uploaded.
func (t *Texture) GPU() *gpu.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gpu
}

// Upload (re)creates the GPU texture on dev from the current image.
func (t *Texture) Upload(dev *gpu.Device) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.uploadLocked(dev)
}

func (t *Texture) uploadLocked(dev *gpu.Device) error {
	b := t.img.Bounds()
	label := t.opts.label
	if label == "" {
		label = t.name
	}
	tex, err := dev.CreateTexture2D(label, uint32(b.Dx()), uint32(b.Dy()), //nolint:gosec // image size is positive
		gputypes.TextureFormatRGBA8Unorm, t.img.Pix)
	if err != nil {
		return fmt.Errorf("texture: upload %q: %w", t.name, err)
	}
	t.releaseGPU()
	t.gpu = tex
	t.opts.device = dev
	return nil
}

// Reload decodes the source file again and re-uploads the texture if it
// was uploaded before. On error the previous image is kept.
func (t *Texture) Reload() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.path == "" {
		return fmt.Errorf("%w: %q", ErrNoSource, t.name)
	}
	prev, prevFormat := t.img, t.format
	if err := t.load(); err != nil {
		t.img, t.format = prev, prevFormat
		return err
	}
	gres.Logger().Debug("texture: reloaded", "name", t.name, "path", t.path)
	return nil
}

// Destroy frees the GPU texture.
func (t *Texture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseGPU()
}

func (t *Texture) releaseGPU() {
	if t.gpu != nil {
		t.opts.device.DestroyTexture(t.gpu)
		t.gpu = nil
	}
}
