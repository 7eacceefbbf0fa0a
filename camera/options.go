// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package camera

import "github.com/gogpu/gres/math3d"

// Option configures a camera built by Constructor.
type Option func(*Camera)

// WithLookAt places the camera at pos looking at lookAt.
func WithLookAt(pos, lookAt, up math3d.Vec3) Option {
	return func(c *Camera) {
		c.Pos = pos
		c.Dir = lookAt.Sub(pos)
		c.Up = up
	}
}

// WithPerspective sets a perspective projection.
func WithPerspective(fovDegree, near, far float32) Option {
	return func(c *Camera) {
		c.Perspective, c.Skewed = true, false
		c.FovDegree, c.Near, c.Far = fovDegree, near, far
	}
}

// WithOrtho sets an orthographic projection.
func WithOrtho(left, right, bottom, top, near, far float32) Option {
	return func(c *Camera) {
		c.Perspective = false
		c.Left, c.Right, c.Bottom, c.Top = left, right, bottom, top
		c.Near, c.Far = near, far
	}
}

// WithSkewedFrustum sets an off-axis perspective projection whose near
// plane spans left..right and bottom..top.
func WithSkewedFrustum(left, right, bottom, top, near, far float32) Option {
	return func(c *Camera) {
		c.Perspective, c.Skewed = true, true
		c.Left, c.Right, c.Bottom, c.Top = left, right, bottom, top
		c.Near, c.Far = near, far
	}
}

// WithViewport sets the aspect ratio from a viewport size in pixels.
func WithViewport(width, height int) Option {
	return func(c *Camera) {
		c.SetViewport(width, height)
	}
}

// WithFixedUp sets whether pitching keeps the up vector.
func WithFixedUp(fixed bool) Option {
	return func(c *Camera) {
		c.FixUp = fixed
	}
}
