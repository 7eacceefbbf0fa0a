// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import (
	"errors"
	"testing"

	"github.com/gogpu/gres/math3d"
)

const eps = 1e-5

func quad() ([]math3d.Vec3, []uint32) {
	return []math3d.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}, []uint32{0, 1, 2, 0, 2, 3}
}

func TestAddOffsetsIndices(t *testing.T) {
	pos, idx := quad()
	g := New("two")
	if g.Valid() {
		t.Error("empty geometry reports Valid")
	}
	for range 2 {
		if err := g.Add(pos, idx, nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	if len(g.Positions) != 8 || len(g.Indices) != 12 {
		t.Fatalf("got %d positions %d indices", len(g.Positions), len(g.Indices))
	}
	want := []uint32{4, 5, 6, 4, 6, 7}
	for i, w := range want {
		if got := g.Indices[6+i]; got != w {
			t.Errorf("Indices[%d] = %d, want %d", 6+i, got, w)
		}
	}
	if !g.Valid() {
		t.Error("Valid() = false")
	}
}

func TestAddErrors(t *testing.T) {
	pos, idx := quad()
	tests := []struct {
		name    string
		setup   func(*Geometry)
		normals []math3d.Vec3
		indices []uint32
		want    error
	}{
		{"short normals", nil, make([]math3d.Vec3, 3), idx, ErrAttributeMismatch},
		{"index past end", nil, nil, []uint32{0, 1, 4}, ErrIndexOutOfRange},
		{
			"normals missing on existing",
			func(g *Geometry) { _ = g.Add(pos, idx, nil, nil) },
			make([]math3d.Vec3, 4), idx, ErrAttributeMismatch,
		},
		{
			"normals dropped on append",
			func(g *Geometry) { _ = g.Add(pos, idx, make([]math3d.Vec3, 4), nil) },
			nil, idx, ErrAttributeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New("g")
			if tt.setup != nil {
				tt.setup(g)
			}
			before := len(g.Positions)
			if err := g.Add(pos, tt.indices, tt.normals, nil); !errors.Is(err, tt.want) {
				t.Fatalf("Add() = %v, want %v", err, tt.want)
			}
			if len(g.Positions) != before {
				t.Error("failed Add modified the geometry")
			}
		})
	}
}

func TestAABBAndTransforms(t *testing.T) {
	pos, idx := quad()
	g, err := FromData("q", pos, idx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !g.BBMin.Approx(math3d.V3(0, 0, 0), eps) || !g.BBMax.Approx(math3d.V3(1, 1, 0), eps) {
		t.Fatalf("AABB = %v %v", g.BBMin, g.BBMax)
	}

	g.Translate(math3d.V3(1, 2, 3))
	if !g.BBMin.Approx(math3d.V3(1, 2, 3), eps) {
		t.Errorf("after Translate BBMin = %v", g.BBMin)
	}

	g.Translate(math3d.V3(-1, -2, -3))
	g.Scale(math3d.V3(2, 3, 1))
	if !g.BBMax.Approx(math3d.V3(2, 3, 0), eps) {
		t.Errorf("after Scale BBMax = %v", g.BBMax)
	}

	g.Rotate(90, math3d.V3(0, 0, 1))
	if !g.BBMin.Approx(math3d.V3(-3, 0, 0), eps) || !g.BBMax.Approx(math3d.V3(0, 2, 0), eps) {
		t.Errorf("after Rotate AABB = %v %v", g.BBMin, g.BBMax)
	}
}

func TestFitIntoAABB(t *testing.T) {
	g := Cuboid("box", 4, 2, 1, math3d.V3(10, 10, 10))
	g.FitIntoAABB(math3d.Splat3(-1), math3d.Splat3(1))

	if !g.Center().Approx(math3d.Vec3{}, eps) {
		t.Errorf("Center() = %v, want origin", g.Center())
	}
	// The longest side (4) is scaled to the target extent (2).
	if !g.BBMax.Approx(math3d.V3(1, 0.5, 0.25), eps) {
		t.Errorf("BBMax = %v", g.BBMax)
	}
	for i, n := range g.Normals {
		if !approx(n.Length(), 1) {
			t.Fatalf("normal %d not unit after fit: %v", i, n)
		}
	}
}

func TestFitIntoAABBFlat(t *testing.T) {
	g := Line("l", math3d.V3(0, 0, 0), math3d.V3(2, 0, 0))
	g.FitIntoAABB(math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
	if !g.BBMin.Approx(math3d.V3(0, 0.5, 0.5), eps) || !g.BBMax.Approx(math3d.V3(1, 0.5, 0.5), eps) {
		t.Errorf("AABB = %v %v", g.BBMin, g.BBMax)
	}
}

func TestClear(t *testing.T) {
	g := Sphere("s", 1, math3d.Vec3{}, 8, 8)
	g.Clear()
	if g.Valid() || g.HasNormals() || g.HasTexcoords() || g.BBMax != (math3d.Vec3{}) {
		t.Errorf("Clear left data: %+v", g)
	}
}

func TestGenerators(t *testing.T) {
	tests := []struct {
		name      string
		g         *Geometry
		positions int
		indices   int
		bbMin     math3d.Vec3
		bbMax     math3d.Vec3
	}{
		{"line", Line("l", math3d.V3(1, 0, 0), math3d.V3(0, 2, 0)), 2, 2, math3d.V3(0, 0, 0), math3d.V3(1, 2, 0)},
		{"points", PointCloud("p", []math3d.Vec3{{X: 1}, {Y: 1}, {Z: -1}}), 3, 3, math3d.V3(0, 0, -1), math3d.V3(1, 1, 0)},
		{"cuboid", Cuboid("c", 2, 4, 6, math3d.Vec3{}), 24, 36, math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3)},
		{
			"sphere", Sphere("s", 2, math3d.V3(1, 0, 0), DefaultSectors, DefaultStacks),
			21 * 21, 20 * 6 * (20 - 1), math3d.V3(-1, -2, -2), math3d.V3(3, 2, 2),
		},
		{
			"cylinder", Cylinder("y", 1, 2, math3d.V3(0, 1, 0), math3d.Vec3{}, 8, 1),
			2*9 + 2*9, 8*6 + 2*8*3, math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1),
		},
		{"bbox", BoundingBox("b", math3d.V3(-1, 0, 0), math3d.V3(1, 1, 1)), 8, 24, math3d.V3(-1, 0, 0), math3d.V3(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.g.Positions); got != tt.positions {
				t.Errorf("positions = %d, want %d", got, tt.positions)
			}
			if got := len(tt.g.Indices); got != tt.indices {
				t.Errorf("indices = %d, want %d", got, tt.indices)
			}
			for _, i := range tt.g.Indices {
				if int(i) >= len(tt.g.Positions) {
					t.Fatalf("index %d out of range", i)
				}
			}
			if !tt.g.BBMin.Approx(tt.bbMin, 1e-4) || !tt.g.BBMax.Approx(tt.bbMax, 1e-4) {
				t.Errorf("AABB = %v %v, want %v %v", tt.g.BBMin, tt.g.BBMax, tt.bbMin, tt.bbMax)
			}
			if tt.g.HasNormals() && len(tt.g.Normals) != len(tt.g.Positions) {
				t.Errorf("normals = %d for %d positions", len(tt.g.Normals), len(tt.g.Positions))
			}
		})
	}
}

func TestSphereNormalsPointOutward(t *testing.T) {
	center := math3d.V3(0, 1, 0)
	g := Sphere("s", 3, center, 12, 6)
	for i, p := range g.Positions {
		want := p.Sub(center).Normalize()
		if !g.Normals[i].Approx(want, 1e-4) {
			t.Fatalf("normal %d = %v, want %v", i, g.Normals[i], want)
		}
	}
}

func TestCuboidWinding(t *testing.T) {
	g := Cuboid("c", 1, 1, 1, math3d.Vec3{})
	for tri := 0; tri < len(g.Indices); tri += 3 {
		a, b, c := g.Positions[g.Indices[tri]], g.Positions[g.Indices[tri+1]], g.Positions[g.Indices[tri+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Dot(g.Normals[g.Indices[tri]]) <= 0 {
			t.Fatalf("triangle %d winds inward", tri/3)
		}
	}
}

func TestFrustum(t *testing.T) {
	eye := math3d.V3(0, 0, 5)
	view := math3d.LookAt(eye, math3d.Vec3{}, math3d.V3(0, 1, 0))
	proj := math3d.Perspective(math3d.Radians(90), 1, 1, 3)

	g := Frustum("f", eye, view, proj)
	if len(g.Positions) != 9 || len(g.Indices) != 32 {
		t.Fatalf("got %d positions %d indices", len(g.Positions), len(g.Indices))
	}
	// Near plane at distance 1 with a 90 degree fov spans [-1, 1].
	if !g.Positions[0].Approx(math3d.V3(-1, -1, 4), 1e-4) {
		t.Errorf("near corner = %v", g.Positions[0])
	}
	if !g.Positions[7].Approx(math3d.V3(3, 3, 2), 1e-4) {
		t.Errorf("far corner = %v", g.Positions[7])
	}

	if got := Frustum("bad", eye, math3d.Mat4{}, proj); got.Valid() {
		t.Error("singular matrices produced geometry")
	}
}

func TestEllipsoid(t *testing.T) {
	g := Ellipsoid("e", math3d.V3(3, 0, 0), math3d.V3(0, 2, 0), math3d.V3(0, 0, 1), math3d.V3(0, 0, 5), 16, 8)
	if !g.BBMin.Approx(math3d.V3(-3, -2, 4), 1e-4) || !g.BBMax.Approx(math3d.V3(3, 2, 6), 1e-4) {
		t.Errorf("AABB = %v %v", g.BBMin, g.BBMax)
	}
	// North pole normal is unaffected by the axis scales.
	if !g.Normals[0].Approx(math3d.V3(0, 1, 0), 1e-4) {
		t.Errorf("pole normal = %v", g.Normals[0])
	}
}

func TestVoxelGrid(t *testing.T) {
	g := VoxelGrid("v", 3, 0.5)
	if len(g.Positions) != 27 || len(g.Indices) != 27 {
		t.Fatalf("got %d positions %d indices", len(g.Positions), len(g.Indices))
	}
	if !g.BBMin.Approx(math3d.Splat3(-0.5), eps) || !g.BBMax.Approx(math3d.Splat3(0.5), eps) {
		t.Errorf("AABB = %v %v", g.BBMin, g.BBMax)
	}
	xyz := VoxelGridXYZ("xyz", 4, 1, 2, 1)
	if len(xyz.Positions) != 8 {
		t.Errorf("VoxelGridXYZ positions = %d, want 8", len(xyz.Positions))
	}
}

func TestNormalize(t *testing.T) {
	a := Cuboid("a", 2, 2, 2, math3d.V3(10, 0, 0))
	b := Cuboid("b", 2, 2, 2, math3d.V3(16, 0, 0))
	Normalize(a, b, New("empty"))

	// Union spans x in [9, 17]: centered at 13 and scaled by 2/8.
	if !a.BBMin.Approx(math3d.V3(-1, -0.25, -0.25), eps) {
		t.Errorf("a.BBMin = %v", a.BBMin)
	}
	if !b.BBMax.Approx(math3d.V3(1, 0.25, 0.25), eps) {
		t.Errorf("b.BBMax = %v", b.BBMax)
	}
}

func TestLaplacianSmooth(t *testing.T) {
	// A fan of four triangles around a raised center vertex.
	pos := []math3d.Vec3{
		{X: 0, Y: 0, Z: 1},
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
	}
	idx := []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 1}
	g, err := FromData("fan", pos, idx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	g.LaplacianSmooth(1)
	if !g.Positions[0].Approx(math3d.V3(0, 0, 0), eps) {
		t.Errorf("center = %v, want origin", g.Positions[0])
	}
	if g.BBMax.Z != 0.5 {
		t.Errorf("BBMax.Z = %v, want AABB recomputed to 0.5", g.BBMax.Z)
	}
}

func TestLaplacianDepthSmooth(t *testing.T) {
	pos := []math3d.Vec3{
		{X: 0, Y: 0, Z: 1},
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1},
	}
	idx := []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 1}
	normals := []math3d.Vec3{{Z: 1}, {X: 1}, {X: 1}, {X: 1}, {X: 1}}
	g, err := FromData("fan", pos, idx, normals, nil)
	if err != nil {
		t.Fatal(err)
	}

	viewPos := math3d.V3(0, 0, 10)
	g.LaplacianDepthSmooth(1, true, viewPos, 0.5)

	// The center lies on the view axis, so it moves only in depth.
	c := g.Positions[0]
	if !approx(c.X, 0) || !approx(c.Y, 0) {
		t.Errorf("center moved sideways: %v", c)
	}
	if !approx(c.Z, 0.5) {
		t.Errorf("center depth = %v, want half way to the neighbor mean", c.Z)
	}
	for i, p := range g.Positions[1:] {
		ray := pos[i+1].Sub(viewPos).Normalize()
		moved := p.Sub(pos[i+1])
		if moved.Cross(ray).Length() > 1e-4 {
			t.Errorf("vertex %d left its view ray: moved %v", i+1, moved)
		}
	}
	if !approx(g.Normals[0].Length(), 1) || !g.Normals[0].Approx(math3d.V3(1, 0, 0), eps) {
		t.Errorf("smoothed normal = %v", g.Normals[0])
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg.Kind() != Kind {
		t.Errorf("Kind() = %q", reg.Kind())
	}
	pos, idx := quad()
	h, err := reg.Construct("quad", Constructor(pos, idx, nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Drop()
	if got := h.Get().Positions; len(got) != 4 {
		t.Errorf("positions = %d", len(got))
	}
	if _, err := reg.Construct("bad", Constructor(pos, []uint32{9}, nil, nil)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Construct() = %v, want ErrIndexOutOfRange", err)
	}
}

func approx(a, b float32) bool {
	d := a - b
	return d < eps && d > -eps
}
