// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres"
	"github.com/gogpu/wgpu/hal"
)

// Texture errors.
var (
	// ErrInvalidTextureSize is returned for zero-sized textures or pixel
	// data not matching the texture size.
	ErrInvalidTextureSize = errors.New("gpu: invalid texture size")

	// ErrUnsupportedFormat is returned for formats CreateTexture2D cannot upload.
	ErrUnsupportedFormat = errors.New("gpu: unsupported texture format")
)

// Texture is a sampled 2D texture and its default view.
type Texture struct {
	raw    hal.Texture
	view   hal.TextureView
	label  string
	width  uint32
	height uint32
	format gputypes.TextureFormat
}

// Raw returns the HAL texture, or nil once destroyed.
func (t *Texture) Raw() hal.Texture { return t.raw }

// View returns the default texture view, or nil once destroyed.
func (t *Texture) View() hal.TextureView { return t.view }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height uint32) { return t.width, t.height }

// Format returns the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// BytesPerPixel returns the texel size of the formats CreateTexture2D accepts.
func BytesPerPixel(format gputypes.TextureFormat) (uint32, error) {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// CreateTexture2D creates a width x height texture in format and uploads
// pixels, tightly packed rows. A nil pixels slice leaves the texture
// uninitialized.
func (d *Device) CreateTexture2D(label string, width, height uint32, format gputypes.TextureFormat, pixels []byte) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %q is %dx%d", ErrInvalidTextureSize, label, width, height)
	}
	bpp, err := BytesPerPixel(format)
	if err != nil {
		return nil, err
	}
	bytesPerRow := width * bpp
	if pixels != nil && uint64(len(pixels)) != uint64(bytesPerRow)*uint64(height) {
		return nil, fmt.Errorf("%w: %q has %d bytes, want %d", ErrInvalidTextureSize,
			label, len(pixels), uint64(bytesPerRow)*uint64(height))
	}

	if err := d.lock(); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	size := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(raw)
		return nil, fmt.Errorf("gpu: create texture view %q: %w", label, err)
	}
	if pixels != nil {
		err := d.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  raw,
				MipLevel: 0,
				Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
				Aspect:   gputypes.TextureAspectAll,
			},
			pixels,
			&hal.ImageDataLayout{Offset: 0, BytesPerRow: bytesPerRow, RowsPerImage: height},
			&size,
		)
		if err != nil {
			d.device.DestroyTextureView(view)
			d.device.DestroyTexture(raw)
			return nil, fmt.Errorf("gpu: write texture %q: %w", label, err)
		}
		d.stats.BytesWritten += uint64(len(pixels))
	}
	d.stats.Textures++
	gres.Logger().Debug("gpu: texture created", "label", label, "width", width, "height", height)
	return &Texture{raw: raw, view: view, label: label, width: width, height: height, format: format}, nil
}

// DestroyTexture frees t and its view. It is safe to call with nil or twice.
func (d *Device) DestroyTexture(t *Texture) {
	if d == nil || t == nil || t.raw == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed || d.external {
		d.device.DestroyTextureView(t.view)
		d.device.DestroyTexture(t.raw)
	}
	t.raw, t.view = nil, nil
	d.stats.Textures--
}
