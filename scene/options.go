// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"log/slog"
	"slices"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/gpu"
)

// Option configures a Scene.
type Option func(*options)

type options struct {
	device   *gpu.Device
	headless bool
	logger   *slog.Logger
	registry []gres.Option
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// registryOptions returns the options every registry of the scene is
// created with. The scene logger comes first so explicit registry options
// can override it.
func (o options) registryOptions() []gres.Option {
	if o.logger == nil {
		return o.registry
	}
	return slices.Concat([]gres.Option{gres.WithLogger(o.logger)}, o.registry)
}

// WithDevice shares dev with the scene. The scene never closes it.
func WithDevice(dev *gpu.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithHeadless opens a headless device owned and closed by the scene. It
// has no effect together with WithDevice.
func WithHeadless() Option {
	return func(o *options) {
		o.headless = true
	}
}

// WithLogger sets the logger of the scene and its registries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRegistryOptions passes opts to every registry of the scene.
func WithRegistryOptions(opts ...gres.Option) Option {
	return func(o *options) {
		o.registry = append(o.registry, opts...)
	}
}
