// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import "github.com/gogpu/gres/gpu"

// Option configures a shader.
type Option func(*options)

type options struct {
	label  string
	device *gpu.Device
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDevice creates the GPU shader module on dev.
func WithDevice(dev *gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithLabel sets the GPU debug label. The shader name is used by default.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
