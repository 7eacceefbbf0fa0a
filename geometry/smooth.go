// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package geometry

import "github.com/gogpu/gres/math3d"

// neighborhood accumulates the triangle-edge neighbors of each vertex.
// A vertex shared by several triangles counts a neighbor once per edge.
type neighborhood struct {
	sum   []math3d.Vec3
	count []float32
}

func (n *neighborhood) reset(size int) {
	n.sum = append(n.sum[:0], make([]math3d.Vec3, size)...)
	n.count = append(n.count[:0], make([]float32, size)...)
}

func (n *neighborhood) accumulate(indices []uint32, attr []math3d.Vec3) {
	for t := 0; t+2 < len(indices); t += 3 {
		for j := range 3 {
			cur, next := indices[t+j], indices[t+(j+1)%3]
			n.sum[cur] = n.sum[cur].Add(attr[next])
			n.sum[next] = n.sum[next].Add(attr[cur])
			n.count[cur]++
			n.count[next]++
		}
	}
}

func (n *neighborhood) mean(i int) (math3d.Vec3, bool) {
	if n.count[i] == 0 {
		return math3d.Vec3{}, false
	}
	return n.sum[i].Div(n.count[i]), true
}

// LaplacianSmooth replaces each vertex by the mean of its triangle
// neighbors, iter times. Indices are read as a triangle list; vertices
// not referenced by any triangle stay where they are.
func (g *Geometry) LaplacianSmooth(iter int) {
	var nb neighborhood
	for range iter {
		nb.reset(len(g.Positions))
		nb.accumulate(g.Indices, g.Positions)
		for i := range g.Positions {
			if c, ok := nb.mean(i); ok {
				g.Positions[i] = c
			}
		}
	}
	g.RecomputeAABB()
}

// LaplacianDepthSmooth is a Laplacian smoothing restricted to the view
// ray through each vertex: the vertex moves toward the neighbor mean only
// along the direction from viewPos, scaled by contribution. With
// smoothNormals set and normals present, normals are replaced by the
// normalized mean of the neighbor normals.
func (g *Geometry) LaplacianDepthSmooth(iter int, smoothNormals bool, viewPos math3d.Vec3, contribution float32) {
	smoothNormals = smoothNormals && g.HasNormals()
	var nb, nbNormals neighborhood
	for range iter {
		nb.reset(len(g.Positions))
		nb.accumulate(g.Indices, g.Positions)
		if smoothNormals {
			nbNormals.reset(len(g.Normals))
			nbNormals.accumulate(g.Indices, g.Normals)
		}
		for i, p := range g.Positions {
			c, ok := nb.mean(i)
			if !ok {
				continue
			}
			ray := p.Sub(viewPos).Normalize()
			offset := ray.Dot(c.Sub(p))
			g.Positions[i] = p.Add(ray.Mul(offset * contribution))
			if smoothNormals {
				n, _ := nbNormals.mean(i)
				g.Normals[i] = n.Normalize()
			}
		}
	}
	g.RecomputeAABB()
}
