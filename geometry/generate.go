// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import (
	"math"

	"github.com/gogpu/gres/math3d"
)

// Default tessellation of round primitives.
const (
	DefaultSectors = 20
	DefaultStacks  = 20
)

// Line returns a single line segment from a to b.
func Line(name string, from, to math3d.Vec3) *Geometry {
	g := New(name)
	g.Positions = []math3d.Vec3{from, to}
	g.Indices = []uint32{0, 1}
	g.RecomputeAABB()
	return g
}

// PointCloud returns one indexed vertex per point.
func PointCloud(name string, points []math3d.Vec3) *Geometry {
	g := New(name)
	g.Positions = append([]math3d.Vec3(nil), points...)
	g.Indices = make([]uint32, len(points))
	for i := range g.Indices {
		g.Indices[i] = uint32(i) //nolint:gosec // point count fits uint32
	}
	g.RecomputeAABB()
	return g
}

// cuboidFaces lists the normal and the two in-plane axes of each face,
// ordered so that u x v == n.
var cuboidFaces = [6][3]math3d.Vec3{
	{{X: 1}, {Z: -1}, {Y: 1}},
	{{X: -1}, {Z: 1}, {Y: 1}},
	{{Y: 1}, {X: 1}, {Z: -1}},
	{{Y: -1}, {X: 1}, {Z: 1}},
	{{Z: 1}, {X: 1}, {Y: 1}},
	{{Z: -1}, {X: -1}, {Y: 1}},
}

// Cuboid returns an axis aligned box of the given size with per-face
// normals and texture coordinates. Triangles wind counter-clockwise seen
// from outside.
func Cuboid(name string, width, height, depth float32, center math3d.Vec3) *Geometry {
	g := New(name)
	half := math3d.V3(width/2, height/2, depth/2)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4]math3d.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	for _, f := range cuboidFaces {
		n, u, v := f[0], f[1], f[2]
		base := uint32(len(g.Positions)) //nolint:gosec // 24 vertices
		for i, c := range corners {
			p := n.Add(u.Mul(c[0])).Add(v.Mul(c[1])).MulVec(half).Add(center)
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, n)
			g.Texcoords = append(g.Texcoords, uvs[i])
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	g.RecomputeAABB()
	return g
}

// Sphere returns a UV sphere with sectors around the Y axis and stacks
// from pole to pole. Values below 3 sectors or 2 stacks are raised.
func Sphere(name string, radius float32, center math3d.Vec3, sectors, stacks int) *Geometry {
	sectors, stacks = max(sectors, 3), max(stacks, 2)
	g := New(name)

	for i := 0; i <= stacks; i++ {
		phi := math.Pi/2 - float64(i)*math.Pi/float64(stacks)
		ring, y := math.Cos(phi), math.Sin(phi)
		for j := 0; j <= sectors; j++ {
			theta := float64(j) * 2 * math.Pi / float64(sectors)
			n := math3d.V3(float32(ring*math.Cos(theta)), float32(y), float32(-ring*math.Sin(theta)))
			g.Positions = append(g.Positions, n.Mul(radius).Add(center))
			g.Normals = append(g.Normals, n)
			g.Texcoords = append(g.Texcoords, math3d.V2(float32(j)/float32(sectors), float32(i)/float32(stacks)))
		}
	}

	for i := range stacks {
		k1 := uint32(i * (sectors + 1)) //nolint:gosec // bounded by tessellation
		k2 := k1 + uint32(sectors) + 1  //nolint:gosec // bounded by tessellation
		for range sectors {
			if i != 0 {
				g.Indices = append(g.Indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				g.Indices = append(g.Indices, k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}
	g.RecomputeAABB()
	return g
}

// Ellipsoid returns a UV sphere deformed so that its principal semi-axes
// are pc1, pc2 and pc3.
func Ellipsoid(name string, pc1, pc2, pc3, center math3d.Vec3, sectors, stacks int) *Geometry {
	g := Sphere(name, 1, math3d.Vec3{}, sectors, stacks)
	basis := math3d.Mat4{
		pc1.X, pc1.Y, pc1.Z, 0,
		pc2.X, pc2.Y, pc2.Z, 0,
		pc3.X, pc3.Y, pc3.Z, 0,
		center.X, center.Y, center.Z, 1,
	}
	g.Transform(basis)
	return g
}

// Cylinder returns a capped cylinder of the given height along axis,
// centered at center. The side is split into stacks rings.
func Cylinder(name string, radius, height float32, axis, center math3d.Vec3, sectors, stacks int) *Geometry {
	sectors, stacks = max(sectors, 3), max(stacks, 1)
	if axis = axis.Normalize(); axis.LengthSq() == 0 {
		axis = math3d.V3(0, 1, 0)
	}
	u, v := orthoBasis(axis)
	bottom := center.Sub(axis.Mul(height / 2))
	g := New(name)

	radial := func(j int) math3d.Vec3 {
		theta := float64(j) * 2 * math.Pi / float64(sectors)
		return u.Mul(float32(math.Cos(theta))).Add(v.Mul(float32(math.Sin(theta))))
	}

	for i := 0; i <= stacks; i++ {
		t := float32(i) / float32(stacks)
		ringCenter := bottom.Add(axis.Mul(t * height))
		for j := 0; j <= sectors; j++ {
			n := radial(j)
			g.Positions = append(g.Positions, ringCenter.Add(n.Mul(radius)))
			g.Normals = append(g.Normals, n)
			g.Texcoords = append(g.Texcoords, math3d.V2(float32(j)/float32(sectors), 1-t))
		}
	}
	ring, rows := uint32(sectors), uint32(stacks) //nolint:gosec // bounded by tessellation
	for i := range rows {
		k1 := i * (ring + 1)
		k2 := k1 + ring + 1
		for j := range ring {
			g.Indices = append(g.Indices, k1+j, k1+j+1, k2+j+1, k1+j, k2+j+1, k2+j)
		}
	}

	for _, c := range [2]struct {
		at     math3d.Vec3
		normal math3d.Vec3
	}{{bottom, axis.Neg()}, {bottom.Add(axis.Mul(height)), axis}} {
		mid := uint32(len(g.Positions)) //nolint:gosec // bounded by tessellation
		g.Positions = append(g.Positions, c.at)
		g.Normals = append(g.Normals, c.normal)
		g.Texcoords = append(g.Texcoords, math3d.V2(0.5, 0.5))
		for j := range sectors {
			r := radial(j)
			g.Positions = append(g.Positions, c.at.Add(r.Mul(radius)))
			g.Normals = append(g.Normals, c.normal)
			g.Texcoords = append(g.Texcoords, math3d.V2(0.5+r.Dot(u)/2, 0.5+r.Dot(v)/2))
		}
		for j := range ring {
			a, b := mid+1+j, mid+1+(j+1)%ring
			if c.normal == axis {
				g.Indices = append(g.Indices, mid, a, b)
			} else {
				g.Indices = append(g.Indices, mid, b, a)
			}
		}
	}
	g.RecomputeAABB()
	return g
}

// orthoBasis returns two unit vectors perpendicular to n and to each other.
func orthoBasis(n math3d.Vec3) (u, v math3d.Vec3) {
	ref := math3d.V3(1, 0, 0)
	if math.Abs(float64(n.X)) > 0.9 {
		ref = math3d.V3(0, 0, 1)
	}
	u = ref.Cross(n).Normalize()
	v = n.Cross(u)
	return u, v
}

// boxEdges indexes the 12 edges of the corners produced by boxCorners.
var boxEdges = []uint32{
	0, 1, 1, 3, 3, 2, 2, 0,
	4, 5, 5, 7, 7, 6, 6, 4,
	0, 4, 1, 5, 2, 6, 3, 7,
}

// boxCorners maps the 8 combinations of lo/hi per axis through f.
// Bit 0 selects X, bit 1 Y, bit 2 Z.
func boxCorners(lo, hi math3d.Vec3, f func(math3d.Vec3) math3d.Vec3) []math3d.Vec3 {
	out := make([]math3d.Vec3, 8)
	for i := range out {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		out[i] = f(p)
	}
	return out
}

// BoundingBox returns the 12 edges of the box [bbMin, bbMax] as lines.
func BoundingBox(name string, bbMin, bbMax math3d.Vec3) *Geometry {
	g := New(name)
	g.Positions = boxCorners(bbMin, bbMax, func(p math3d.Vec3) math3d.Vec3 { return p })
	g.Indices = append([]uint32(nil), boxEdges...)
	g.RecomputeAABB()
	return g
}

// Frustum returns the edges of the view volume described by view and proj
// as lines, plus lines from eye to the four near corners. Projections
// follow the [0, 1] clip depth of math3d. A singular view-projection
// yields an empty geometry.
func Frustum(name string, eye math3d.Vec3, view, proj math3d.Mat4) *Geometry {
	g := New(name)
	inv, ok := proj.Mul(view).Inverse()
	if !ok {
		return g
	}
	g.Positions = boxCorners(math3d.V3(-1, -1, 0), math3d.V3(1, 1, 1), inv.MulPoint)
	g.Indices = append([]uint32(nil), boxEdges...)

	g.Positions = append(g.Positions, eye)
	apex := uint32(len(g.Positions) - 1) //nolint:gosec // 9 vertices
	g.Indices = append(g.Indices, apex, 0, apex, 1, apex, 2, apex, 3)
	g.RecomputeAABB()
	return g
}

// VoxelGrid returns size^3 points spaced scale apart, centered at the
// origin.
func VoxelGrid(name string, size int, scale float32) *Geometry {
	return VoxelGridXYZ(name, size, size, size, scale)
}

// VoxelGridXYZ returns nx*ny*nz points spaced scale apart, centered at
// the origin.
func VoxelGridXYZ(name string, nx, ny, nz int, scale float32) *Geometry {
	nx, ny, nz = max(nx, 0), max(ny, 0), max(nz, 0)
	offset := math3d.V3(float32(nx-1), float32(ny-1), float32(nz-1)).Mul(scale / 2)
	points := make([]math3d.Vec3, 0, nx*ny*nz)
	for z := range nz {
		for y := range ny {
			for x := range nx {
				p := math3d.V3(float32(x), float32(y), float32(z)).Mul(scale)
				points = append(points, p.Sub(offset))
			}
		}
	}
	return PointCloud(name, points)
}

// Normalize moves and uniformly scales geoms together so that their
// combined bounding box is centered at the origin and fits into
// [-1, 1] on every axis.
func Normalize(geoms ...*Geometry) {
	var lo, hi math3d.Vec3
	first := true
	for _, g := range geoms {
		if len(g.Positions) == 0 {
			continue
		}
		if first {
			lo, hi, first = g.BBMin, g.BBMax, false
			continue
		}
		lo, hi = lo.Min(g.BBMin), hi.Max(g.BBMax)
	}
	if first {
		return
	}
	center := lo.Add(hi).Mul(0.5)
	extent := hi.Sub(lo)
	factor := float32(math.Inf(1))
	for _, e := range [3]float32{extent.X, extent.Y, extent.Z} {
		if e > 0 {
			factor = min(factor, 2/e)
		}
	}
	for _, g := range geoms {
		g.Translate(center.Neg())
		if !math.IsInf(float64(factor), 1) {
			g.Scale(math3d.Splat3(factor))
		}
	}
}
