// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres/gpu"
)

// Option configures a mesh.
type Option func(*options)

type options struct {
	device   *gpu.Device
	topology gputypes.PrimitiveTopology
}

func newOptions(opts []Option) options {
	o := options{topology: gputypes.PrimitiveTopologyTriangleList}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDevice uploads the mesh to dev.
func WithDevice(dev *gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithTopology sets the primitive topology. Triangle lists are the default.
func WithTopology(t gputypes.PrimitiveTopology) Option {
	return func(o *options) {
		o.topology = t
	}
}
