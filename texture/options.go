// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import "github.com/gogpu/gres/gpu"

// LoadOption configures how a texture is loaded.
type LoadOption func(*loadOptions)

type loadOptions struct {
	maxSize int
	label   string
	device  *gpu.Device
}

func newLoadOptions(opts []LoadOption) loadOptions {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxSize scales images whose longer side exceeds n pixels down to n,
// keeping the aspect ratio. Values <= 0 disable scaling.
func WithMaxSize(n int) LoadOption {
	return func(o *loadOptions) {
		o.maxSize = n
	}
}

// WithLabel sets the GPU debug label. The texture name is used by default.
func WithLabel(label string) LoadOption {
	return func(o *loadOptions) {
		o.label = label
	}
}

// WithDevice uploads the texture to dev as part of construction.
func WithDevice(dev *gpu.Device) LoadOption {
	return func(o *loadOptions) {
		o.device = dev
	}
}
