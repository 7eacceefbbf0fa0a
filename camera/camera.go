// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package camera provides the Camera resource kind: a view position and
// orientation with a perspective, skewed or orthographic projection.
package camera

import (
	"github.com/gogpu/gres"
	"github.com/gogpu/gres/math3d"
)

// Kind is the registry kind name of cameras.
const Kind = "camera"

// DefaultName is the name of the camera used when none is current.
const DefaultName = "default"

// DefaultMovementSpeed is the distance per millisecond input handlers
// move a camera by.
const DefaultMovementSpeed = 0.005

type (
	// Handle is a shared handle to a registered Camera.
	Handle = gres.Handle[*Camera]
	// Registry is the directory of cameras.
	Registry = gres.Registry[*Camera]
)

// NewRegistry creates an empty camera registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Camera](Kind, opts...)
}

// Camera is a right-handed view with its projection. The matrices are
// recomputed by Update from the other fields.
//
// Camera is not safe for concurrent use.
type Camera struct {
	name string

	// Pos, Dir and Up span the camera coordinate system.
	Pos, Dir, Up math3d.Vec3

	// FovDegree is the vertical field of view of the perspective projection.
	FovDegree float32
	Near, Far float32

	// Left, Right, Bottom and Top bound the orthographic projection, or the
	// near plane of a skewed frustum.
	Left, Right, Bottom, Top float32

	// Aspect is the viewport width over height of the perspective projection.
	Aspect float32

	Perspective bool // perspective (default) or orthographic
	Skewed      bool // off-axis frustum from Left..Top instead of FovDegree
	FixUp       bool // keep Up fixed on pitch to avoid drift
	CanMove     bool // input handlers leave the camera alone when false

	View, ViewNormal, Proj math3d.Mat4
}

// New returns a camera at the origin looking along +X with default
// projection parameters and up-to-date matrices.
func New(name string) *Camera {
	c := &Camera{
		name:        name,
		Dir:         math3d.V3(1, 0, 0),
		Up:          math3d.V3(0, 1, 0),
		FovDegree:   70,
		Near:        0.01,
		Far:         1000,
		Left:        -100,
		Right:       100,
		Bottom:      -100,
		Top:         100,
		Aspect:      1,
		Perspective: true,
		FixUp:       true,
		CanMove:     true,
	}
	c.Update()
	return c
}

// Constructor returns a registry constructor applying opts to a default
// camera before its matrices are computed.
func Constructor(opts ...Option) gres.Constructor[*Camera] {
	return func(name string) (*Camera, error) {
		c := New(name)
		for _, opt := range opts {
			opt(c)
		}
		c.Update()
		return c, nil
	}
}

// Name returns the camera name.
func (c *Camera) Name() string { return c.name }

// Update normalizes Dir and Up and recomputes View, ViewNormal and Proj.
func (c *Camera) Update() {
	c.Dir = c.Dir.Normalize()
	c.Up = c.Up.Normalize()
	c.View = math3d.LookAt(c.Pos, c.Pos.Add(c.Dir), c.Up)
	c.ViewNormal = c.View.NormalMatrix()
	switch {
	case !c.Perspective:
		c.Proj = math3d.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
	case c.Skewed:
		c.Proj = math3d.Frustum(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
	default:
		c.Proj = math3d.Perspective(math3d.Radians(c.FovDegree), c.Aspect, c.Near, c.Far)
	}
}

// SetViewport sets Aspect from a viewport size in pixels. A zero height
// is ignored.
func (c *Camera) SetViewport(width, height int) {
	if height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// FromLookAt places the camera at pos looking at lookAt and updates it.
func (c *Camera) FromLookAt(pos, lookAt, up math3d.Vec3) {
	c.Pos = pos
	c.Dir = lookAt.Sub(pos).Normalize()
	c.Up = up
	c.Update()
}

func (c *Camera) right() math3d.Vec3 { return c.Dir.Cross(c.Up) }

func (c *Camera) upward() math3d.Vec3 {
	return c.right().Cross(c.Dir).Normalize()
}

// Forward moves the camera by along Dir.
func (c *Camera) Forward(by float32) { c.Pos = c.Pos.Add(c.Dir.Mul(by)) }

// Backward moves the camera by against Dir.
func (c *Camera) Backward(by float32) { c.Pos = c.Pos.Sub(c.Dir.Mul(by)) }

// Leftward moves the camera by to the left.
func (c *Camera) Leftward(by float32) { c.Pos = c.Pos.Sub(c.right().Mul(by)) }

// Rightward moves the camera by to the right.
func (c *Camera) Rightward(by float32) { c.Pos = c.Pos.Add(c.right().Mul(by)) }

// Upward moves the camera by along the up direction orthogonal to Dir.
func (c *Camera) Upward(by float32) { c.Pos = c.Pos.Add(c.upward().Mul(by)) }

// Downward moves the camera by against the up direction orthogonal to Dir.
func (c *Camera) Downward(by float32) { c.Pos = c.Pos.Sub(c.upward().Mul(by)) }

// Yaw turns Dir around Up by angle degrees.
func (c *Camera) Yaw(angle float32) {
	c.Dir = c.Dir.Rotate(math3d.Radians(angle), c.Up).Normalize()
}

// Pitch turns Dir up or down by angle degrees. Up follows unless FixUp
// is set.
func (c *Camera) Pitch(angle float32) {
	c.Dir = c.Dir.Rotate(math3d.Radians(angle), c.right().Normalize()).Normalize()
	if !c.FixUp {
		c.Up = c.upward()
	}
}

// Roll turns Up around Dir by angle degrees.
func (c *Camera) Roll(angle float32) {
	c.Up = c.Up.Rotate(math3d.Radians(angle), c.Dir).Normalize()
}
