// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package geometry provides the Geometry resource kind: CPU-side vertex
// and index data that meshes upload to the GPU.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/math3d"
)

// Kind is the registry kind name of geometries.
const Kind = "geometry"

// Geometry errors.
var (
	// ErrAttributeMismatch is returned when optional vertex attributes do
	// not have one entry per position.
	ErrAttributeMismatch = errors.New("geometry: attribute count does not match position count")

	// ErrIndexOutOfRange is returned when an index refers past the positions.
	ErrIndexOutOfRange = errors.New("geometry: index out of range")
)

// Geometry holds indexed vertex data. Normals and Texcoords are either
// empty or have one entry per position.
type Geometry struct {
	name string

	Positions []math3d.Vec3
	Indices   []uint32
	Normals   []math3d.Vec3
	Texcoords []math3d.Vec2

	// BBMin and BBMax bound Positions; kept current by the methods of
	// Geometry. Call RecomputeAABB after editing Positions directly.
	BBMin, BBMax math3d.Vec3
}

type (
	// Handle is a shared handle to a registered Geometry.
	Handle = gres.Handle[*Geometry]
	// Registry is the directory of geometries.
	Registry = gres.Registry[*Geometry]
)

// NewRegistry creates an empty geometry registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Geometry](Kind, opts...)
}

// New returns an empty geometry.
func New(name string) *Geometry {
	return &Geometry{name: name}
}

// FromData returns a geometry holding the given data. normals and
// texcoords may be nil.
func FromData(name string, positions []math3d.Vec3, indices []uint32, normals []math3d.Vec3, texcoords []math3d.Vec2) (*Geometry, error) {
	g := New(name)
	if err := g.Add(positions, indices, normals, texcoords); err != nil {
		return nil, err
	}
	return g, nil
}

// Constructor returns a registry constructor building a geometry from data.
func Constructor(positions []math3d.Vec3, indices []uint32, normals []math3d.Vec3, texcoords []math3d.Vec2) gres.Constructor[*Geometry] {
	return func(name string) (*Geometry, error) {
		return FromData(name, positions, indices, normals, texcoords)
	}
}

// Name returns the geometry name.
func (g *Geometry) Name() string { return g.name }

// Valid reports whether the geometry has both positions and indices.
func (g *Geometry) Valid() bool {
	return len(g.Positions) > 0 && len(g.Indices) > 0
}

// HasNormals reports whether per-vertex normals are present.
func (g *Geometry) HasNormals() bool { return len(g.Normals) > 0 }

// HasTexcoords reports whether per-vertex texture coordinates are present.
func (g *Geometry) HasTexcoords() bool { return len(g.Texcoords) > 0 }

// Add appends vertex data. Indices are relative to the appended positions
// and are offset to follow the existing vertices. An attribute that is
// already present must be supplied for the new vertices too.
func (g *Geometry) Add(positions []math3d.Vec3, indices []uint32, normals []math3d.Vec3, texcoords []math3d.Vec2) error {
	if err := checkAttr("normals", len(normals), len(positions), g.HasNormals(), len(g.Positions)); err != nil {
		return err
	}
	if err := checkAttr("texcoords", len(texcoords), len(positions), g.HasTexcoords(), len(g.Positions)); err != nil {
		return err
	}
	for _, i := range indices {
		if int(i) >= len(positions) {
			return fmt.Errorf("%w: %d >= %d in %q", ErrIndexOutOfRange, i, len(positions), g.name)
		}
	}

	if len(positions) > math.MaxUint32-len(g.Positions) {
		return fmt.Errorf("%w: vertex count overflows uint32 in %q", ErrIndexOutOfRange, g.name)
	}
	base := uint32(len(g.Positions)) //nolint:gosec // checked above
	g.Positions = append(g.Positions, positions...)
	for _, i := range indices {
		g.Indices = append(g.Indices, base+i)
	}
	g.Normals = append(g.Normals, normals...)
	g.Texcoords = append(g.Texcoords, texcoords...)
	g.RecomputeAABB()
	return nil
}

func checkAttr(attr string, got, positions int, present bool, existing int) error {
	switch {
	case got == 0 && (!present || positions == 0):
		return nil
	case got != positions:
		return fmt.Errorf("%w: %d %s for %d positions", ErrAttributeMismatch, got, attr, positions)
	case !present && existing > 0:
		return fmt.Errorf("%w: %s missing on the %d existing positions", ErrAttributeMismatch, attr, existing)
	}
	return nil
}

// AddGeometry appends the data of other.
func (g *Geometry) AddGeometry(other *Geometry) error {
	return g.Add(other.Positions, other.Indices, other.Normals, other.Texcoords)
}

// Clear removes all vertex data.
func (g *Geometry) Clear() {
	g.Positions = g.Positions[:0]
	g.Indices = g.Indices[:0]
	g.Normals = g.Normals[:0]
	g.Texcoords = g.Texcoords[:0]
	g.BBMin, g.BBMax = math3d.Vec3{}, math3d.Vec3{}
}

// RecomputeAABB recomputes BBMin and BBMax from Positions.
func (g *Geometry) RecomputeAABB() {
	if len(g.Positions) == 0 {
		g.BBMin, g.BBMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}
	g.BBMin, g.BBMax = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		g.BBMin = g.BBMin.Min(p)
		g.BBMax = g.BBMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (g *Geometry) Center() math3d.Vec3 {
	return g.BBMin.Add(g.BBMax).Mul(0.5)
}

// FitIntoAABB uniformly scales and moves the geometry so that it is
// centered in and fits into the box [aabbMin, aabbMax].
func (g *Geometry) FitIntoAABB(aabbMin, aabbMax math3d.Vec3) {
	if len(g.Positions) == 0 {
		return
	}
	extent := g.BBMax.Sub(g.BBMin)
	target := aabbMax.Sub(aabbMin)

	factor := float32(math.Inf(1))
	for _, axis := range [3][2]float32{{extent.X, target.X}, {extent.Y, target.Y}, {extent.Z, target.Z}} {
		if axis[0] > 0 {
			factor = min(factor, axis[1]/axis[0])
		}
	}

	g.Translate(g.Center().Neg())
	if !math.IsInf(float64(factor), 1) {
		g.Scale(math3d.Splat3(factor))
	}
	g.Translate(aabbMin.Add(aabbMax).Mul(0.5))
}

// Translate moves all positions by v.
func (g *Geometry) Translate(v math3d.Vec3) {
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].Add(v)
	}
	g.RecomputeAABB()
}

// Scale scales all positions component-wise by s. Normals are rescaled
// with the inverse factors and renormalized.
func (g *Geometry) Scale(s math3d.Vec3) {
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].MulVec(s)
	}
	if s.X != 0 && s.Y != 0 && s.Z != 0 {
		inv := math3d.V3(1/s.X, 1/s.Y, 1/s.Z)
		for i := range g.Normals {
			g.Normals[i] = g.Normals[i].MulVec(inv).Normalize()
		}
	}
	g.RecomputeAABB()
}

// Rotate rotates positions and normals by angleDegrees around axis
// through the origin.
func (g *Geometry) Rotate(angleDegrees float32, axis math3d.Vec3) {
	angle := math3d.Radians(angleDegrees)
	for i := range g.Positions {
		g.Positions[i] = g.Positions[i].Rotate(angle, axis)
	}
	for i := range g.Normals {
		g.Normals[i] = g.Normals[i].Rotate(angle, axis).Normalize()
	}
	g.RecomputeAABB()
}

// Transform applies m to positions and its normal matrix to normals.
func (g *Geometry) Transform(m math3d.Mat4) {
	for i := range g.Positions {
		g.Positions[i] = m.MulPoint(g.Positions[i])
	}
	if len(g.Normals) > 0 {
		n := m.NormalMatrix()
		for i := range g.Normals {
			g.Normals[i] = n.MulDir(g.Normals[i]).Normalize()
		}
	}
	g.RecomputeAABB()
}
