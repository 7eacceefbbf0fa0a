// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import "log/slog"

// Option configures a Registry during creation.
//
// Example:
//
//	meshes := gres.NewRegistry[mesh.Primitive]("mesh",
//	    gres.WithLogger(logger.With("component", "loader")),
//	    gres.WithCapacity(256),
//	)
type Option func(*options)

// options holds optional configuration for Registry creation.
type options struct {
	logger   *slog.Logger
	capacity int
}

// defaultOptions returns the default registry options.
func defaultOptions() options {
	return options{
		logger:   nil, // falls back to Logger() at call time
		capacity: 0,
	}
}

// WithLogger sets a logger for one registry, overriding the package logger
// configured with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCapacity preallocates room for n entries.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
