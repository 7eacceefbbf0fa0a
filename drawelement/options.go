// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package drawelement

import (
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/gres/math3d"
)

// Option configures a drawelement.
type Option func(*options)

type options struct {
	device *gpu.Device
	model  math3d.Mat4
}

func newOptions(opts []Option) options {
	o := options{model: math3d.Identity4()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDevice creates the uniform buffer on dev.
func WithDevice(dev *gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithModel sets the initial model matrix.
func WithModel(m math3d.Mat4) Option {
	return func(o *options) {
		o.model = m
	}
}
