// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mesh

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres/geometry"
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/gres/material"
	"github.com/gogpu/gres/math3d"
)

// Line is a mesh of a single line segment.
type Line struct {
	*Mesh
	From, To math3d.Vec3
}

// PointCloud is a mesh of unconnected points.
type PointCloud struct {
	*Mesh
	// PointSize is the rasterized point size in pixels, for shaders that
	// support it.
	PointSize float32
}

// Cuboid is an axis aligned box mesh. Width, Height and Depth are the
// extents along X, Y and Z.
type Cuboid struct {
	*Mesh
	Width, Height, Depth float32
	Center               math3d.Vec3
}

// Sphere is a UV sphere mesh.
type Sphere struct {
	*Mesh
	Radius          float32
	Center          math3d.Vec3
	Sectors, Stacks int
}

// Ellipsoid is a UV sphere mesh stretched along three principal axes.
type Ellipsoid struct {
	*Mesh
	PC1, PC2, PC3   math3d.Vec3
	Center          math3d.Vec3
	Sectors, Stacks int
}

// Cylinder is a capped cylinder mesh.
type Cylinder struct {
	*Mesh
	Radius, Height  float32
	Axis, Center    math3d.Vec3
	Sectors, Stacks int
}

// BoundingBox is a line mesh of the edges of a box.
type BoundingBox struct {
	*Mesh
	Min, Max math3d.Vec3
}

// Frustum is a line mesh of a camera view volume.
type Frustum struct {
	*Mesh
	Eye        math3d.Vec3
	View, Proj math3d.Mat4
}

// VoxelGrid is a point mesh of a regular grid.
type VoxelGrid struct {
	*Mesh
	NX, NY, NZ int
	Scale      float32
}

// Builder generates primitive geometries and registers them together
// with the primitives drawing them. The geometry is registered under the
// primitive's name. Nil registries are created on first use.
type Builder struct {
	Meshes     *Registry
	Geometries *geometry.Registry
	// Device receives the GPU buffers; nil builds CPU-only meshes.
	Device *gpu.Device
}

func (b *Builder) registries() (*Registry, *geometry.Registry) {
	if b.Meshes == nil {
		b.Meshes = NewRegistry()
	}
	if b.Geometries == nil {
		b.Geometries = geometry.NewRegistry()
	}
	return b.Meshes, b.Geometries
}

// build registers g, wraps a mesh over it and registers the wrapper.
func build[P Primitive](b *Builder, g *geometry.Geometry, mat material.Handle, topology gputypes.PrimitiveTopology, wrap func(*Mesh) P) (Handle, error) {
	meshes, geometries := b.registries()
	gh, err := geometries.Adopt(g)
	if err != nil {
		return Handle{}, fmt.Errorf("mesh: %q: %w", g.Name(), err)
	}
	defer gh.Drop()

	opts := []Option{WithTopology(topology)}
	if b.Device != nil {
		opts = append(opts, WithDevice(b.Device))
	}
	m, err := New(g.Name(), gh, mat, opts...)
	if err != nil {
		return Handle{}, errors.Join(err, gh.Release(false))
	}
	h, err := meshes.Adopt(wrap(m))
	if err != nil {
		return Handle{}, errors.Join(err, gh.Release(false))
	}
	return h, nil
}

// Mesh registers a plain mesh over an already registered geometry.
func (b *Builder) Mesh(name string, geo geometry.Handle, mat material.Handle, topology gputypes.PrimitiveTopology) (Handle, error) {
	meshes, _ := b.registries()
	opts := []Option{WithTopology(topology)}
	if b.Device != nil {
		opts = append(opts, WithDevice(b.Device))
	}
	return meshes.Construct(name, Constructor(geo, mat, opts...))
}

// Line builds a Line from from to to.
func (b *Builder) Line(name string, from, to math3d.Vec3, mat material.Handle) (Handle, error) {
	return build(b, geometry.Line(name, from, to), mat, gputypes.PrimitiveTopologyLineList,
		func(m *Mesh) *Line { return &Line{Mesh: m, From: from, To: to} })
}

// PointCloud builds a PointCloud over points.
func (b *Builder) PointCloud(name string, points []math3d.Vec3, pointSize float32, mat material.Handle) (Handle, error) {
	return build(b, geometry.PointCloud(name, points), mat, gputypes.PrimitiveTopologyPointList,
		func(m *Mesh) *PointCloud { return &PointCloud{Mesh: m, PointSize: pointSize} })
}

// Cuboid builds a Cuboid.
func (b *Builder) Cuboid(name string, width, height, depth float32, center math3d.Vec3, mat material.Handle) (Handle, error) {
	return build(b, geometry.Cuboid(name, width, height, depth, center), mat, gputypes.PrimitiveTopologyTriangleList,
		func(m *Mesh) *Cuboid {
			return &Cuboid{Mesh: m, Width: width, Height: height, Depth: depth, Center: center}
		})
}

// Sphere builds a Sphere with the default tessellation.
func (b *Builder) Sphere(name string, radius float32, center math3d.Vec3, mat material.Handle) (Handle, error) {
	return b.SphereTessellated(name, radius, center, geometry.DefaultSectors, geometry.DefaultStacks, mat)
}

// SphereTessellated builds a Sphere with the given tessellation.
func (b *Builder) SphereTessellated(name string, radius float32, center math3d.Vec3, sectors, stacks int, mat material.Handle) (Handle, error) {
	return build(b, geometry.Sphere(name, radius, center, sectors, stacks), mat, gputypes.PrimitiveTopologyTriangleList,
		func(m *Mesh) *Sphere {
			return &Sphere{Mesh: m, Radius: radius, Center: center, Sectors: sectors, Stacks: stacks}
		})
}

// Ellipsoid builds an Ellipsoid with the default tessellation.
func (b *Builder) Ellipsoid(name string, pc1, pc2, pc3, center math3d.Vec3, mat material.Handle) (Handle, error) {
	sectors, stacks := geometry.DefaultSectors, geometry.DefaultStacks
	return build(b, geometry.Ellipsoid(name, pc1, pc2, pc3, center, sectors, stacks), mat, gputypes.PrimitiveTopologyTriangleList,
		func(m *Mesh) *Ellipsoid {
			return &Ellipsoid{Mesh: m, PC1: pc1, PC2: pc2, PC3: pc3, Center: center, Sectors: sectors, Stacks: stacks}
		})
}

// Cylinder builds a Cylinder with the default tessellation.
func (b *Builder) Cylinder(name string, radius, height float32, axis, center math3d.Vec3, mat material.Handle) (Handle, error) {
	sectors, stacks := geometry.DefaultSectors, geometry.DefaultStacks
	return build(b, geometry.Cylinder(name, radius, height, axis, center, sectors, stacks), mat, gputypes.PrimitiveTopologyTriangleList,
		func(m *Mesh) *Cylinder {
			return &Cylinder{Mesh: m, Radius: radius, Height: height, Axis: axis, Center: center, Sectors: sectors, Stacks: stacks}
		})
}

// BoundingBox builds a BoundingBox over [bbMin, bbMax].
func (b *Builder) BoundingBox(name string, bbMin, bbMax math3d.Vec3, mat material.Handle) (Handle, error) {
	return build(b, geometry.BoundingBox(name, bbMin, bbMax), mat, gputypes.PrimitiveTopologyLineList,
		func(m *Mesh) *BoundingBox { return &BoundingBox{Mesh: m, Min: bbMin, Max: bbMax} })
}

// Frustum builds a Frustum of the view volume of view and proj seen from
// eye.
func (b *Builder) Frustum(name string, eye math3d.Vec3, view, proj math3d.Mat4, mat material.Handle) (Handle, error) {
	return build(b, geometry.Frustum(name, eye, view, proj), mat, gputypes.PrimitiveTopologyLineList,
		func(m *Mesh) *Frustum { return &Frustum{Mesh: m, Eye: eye, View: view, Proj: proj} })
}

// VoxelGrid builds a VoxelGrid of nx*ny*nz points spaced scale apart.
func (b *Builder) VoxelGrid(name string, nx, ny, nz int, scale float32, mat material.Handle) (Handle, error) {
	return build(b, geometry.VoxelGridXYZ(name, nx, ny, nz, scale), mat, gputypes.PrimitiveTopologyPointList,
		func(m *Mesh) *VoxelGrid { return &VoxelGrid{Mesh: m, NX: nx, NY: ny, NZ: nz, Scale: scale} })
}
