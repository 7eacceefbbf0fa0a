// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package mesh provides the Mesh resource kind: a geometry and a material
// bound to GPU vertex and index buffers.
//
// The registry kind is the Primitive interface. *Mesh and every
// generated primitive (*Sphere, *Cuboid, *Line, ...) satisfy it, so one
// registry holds them all and gres.Cast recovers the concrete type:
//
//	h, err := b.Sphere("ball", 1, math3d.Vec3{}, material.Handle{})
//	ball := gres.Cast[*mesh.Sphere](h)
//	defer ball.Drop()
package mesh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres"
	"github.com/gogpu/gres/geometry"
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/gres/material"
)

// Kind is the registry kind name of meshes.
const Kind = "mesh"

// Mesh errors.
var (
	// ErrVertexCountMismatch is returned when a vertex buffer does not hold
	// as many vertices as the buffers already attached.
	ErrVertexCountMismatch = errors.New("mesh: vertex buffer size mismatch")

	// ErrBufferID is returned for a vertex buffer id that is out of range.
	ErrBufferID = errors.New("mesh: buffer id out of range")

	// ErrNoDevice is returned by GPU operations on a mesh without device.
	ErrNoDevice = errors.New("mesh: no device")

	// ErrUnsupportedFormat is returned for vertex formats of unknown size.
	ErrUnsupportedFormat = errors.New("mesh: unsupported vertex format")
)

// Primitive is the registry kind of meshes: anything built around a Mesh.
type Primitive interface {
	gres.Resource
	Base() *Mesh
}

type (
	// Handle is a shared handle to a registered mesh or primitive.
	Handle = gres.Handle[Primitive]
	// Registry is the directory of meshes and primitives.
	Registry = gres.Registry[Primitive]
)

// NewRegistry creates an empty mesh registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[Primitive](Kind, opts...)
}

type vertexBuffer struct {
	buf    *gpu.Buffer
	format gputypes.VertexFormat
	stride uint64
}

// DrawCall describes how to draw the mesh with its current buffers.
type DrawCall struct {
	Topology gputypes.PrimitiveTopology
	// Indexed is set when an index buffer is attached; Count is then the
	// number of indices, otherwise the number of vertices.
	Indexed bool
	Count   uint32
}

// Mesh owns a geometry handle, an optional material handle and the GPU
// buffers created from the geometry.
//
// Mesh is safe for concurrent use. The geometry itself is not locked by
// the mesh; call Upload after modifying it.
type Mesh struct {
	name string

	mu          sync.Mutex
	geometry    geometry.Handle
	material    material.Handle
	topology    gputypes.PrimitiveTopology
	device      *gpu.Device
	vbos        []vertexBuffer
	ibo         *gpu.Buffer
	numVertices uint32
	numIndices  uint32
}

// New builds a mesh drawing geo with mat. Both handles are cloned; either
// may be null. With a device the geometry is uploaded right away.
func New(name string, geo geometry.Handle, mat material.Handle, opts ...Option) (*Mesh, error) {
	o := newOptions(opts)
	m := &Mesh{
		name:     name,
		geometry: geo.Clone(),
		material: mat.Clone(),
		topology: o.topology,
		device:   o.device,
	}
	if m.device != nil {
		if err := m.Upload(); err != nil {
			m.Destroy()
			return nil, err
		}
	}
	return m, nil
}

// Constructor returns a registry constructor for a plain mesh.
func Constructor(geo geometry.Handle, mat material.Handle, opts ...Option) gres.Constructor[Primitive] {
	return func(name string) (Primitive, error) {
		m, err := New(name, geo, mat, opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// Base returns m.
func (m *Mesh) Base() *Mesh { return m }

// Geometry returns the drawn geometry, or nil.
func (m *Mesh) Geometry() *geometry.Geometry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.geometry.Valid() {
		return nil
	}
	return m.geometry.Get()
}

// Material returns the material, or nil.
func (m *Mesh) Material() *material.Material {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.material.Valid() {
		return nil
	}
	return m.material.Get()
}

// SetMaterial replaces the material. A null handle removes it.
func (m *Mesh) SetMaterial(mat material.Handle) {
	owned := mat.Clone()
	m.mu.Lock()
	old := m.material
	m.material = owned
	m.mu.Unlock()
	old.Drop()
}

// Topology returns the primitive topology.
func (m *Mesh) Topology() gputypes.PrimitiveTopology {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topology
}

// SetTopology sets the primitive topology.
func (m *Mesh) SetTopology(t gputypes.PrimitiveTopology) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topology = t
}

// Device returns the device the buffers live on, or nil.
func (m *Mesh) Device() *gpu.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.device
}

// Attach sets the device and uploads the geometry to it.
func (m *Mesh) Attach(dev *gpu.Device) error {
	m.mu.Lock()
	if m.device != dev {
		m.clearLocked()
		m.device = dev
	}
	m.mu.Unlock()
	return m.Upload()
}

// Upload frees the GPU buffers and uploads the geometry again: positions,
// then normals and texcoords when present, then indices. Vertex buffer ids
// follow that order. A mesh without geometry uploads nothing.
func (m *Mesh) Upload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return fmt.Errorf("%w: upload %q", ErrNoDevice, m.name)
	}
	m.clearLocked()
	if !m.geometry.Valid() {
		return nil
	}
	g := m.geometry.Get()
	n := len(g.Positions)

	if _, err := m.addVertexBufferLocked(gputypes.VertexFormatFloat32x3, n, gpu.Vec3Bytes(g.Positions)); err != nil {
		return err
	}
	if g.HasNormals() {
		if _, err := m.addVertexBufferLocked(gputypes.VertexFormatFloat32x3, len(g.Normals), gpu.Vec3Bytes(g.Normals)); err != nil {
			return err
		}
	}
	if g.HasTexcoords() {
		if _, err := m.addVertexBufferLocked(gputypes.VertexFormatFloat32x2, len(g.Texcoords), gpu.Vec2Bytes(g.Texcoords)); err != nil {
			return err
		}
	}
	if err := m.addIndexBufferLocked(g.Indices); err != nil {
		return err
	}
	gres.Logger().Debug("mesh: uploaded", "name", m.name, "vertices", m.numVertices, "indices", m.numIndices)
	return nil
}

// ClearGPU frees all GPU buffers of the mesh.
func (m *Mesh) ClearGPU() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Mesh) clearLocked() {
	for _, vb := range m.vbos {
		m.device.DestroyBuffer(vb.buf)
	}
	m.vbos = m.vbos[:0]
	if m.ibo != nil {
		m.device.DestroyBuffer(m.ibo)
		m.ibo = nil
	}
	m.numVertices, m.numIndices = 0, 0
}

// AddVertexBuffer uploads numVertices elements of format as a new vertex
// buffer and returns its id, which is also its shader location. All vertex
// buffers of a mesh hold the same number of vertices.
func (m *Mesh) AddVertexBuffer(format gputypes.VertexFormat, numVertices int, data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addVertexBufferLocked(format, numVertices, data)
}

func (m *Mesh) addVertexBufferLocked(format gputypes.VertexFormat, numVertices int, data []byte) (int, error) {
	if m.device == nil {
		return 0, fmt.Errorf("%w: add vertex buffer to %q", ErrNoDevice, m.name)
	}
	stride, err := FormatSize(format)
	if err != nil {
		return 0, err
	}
	n := uint32(numVertices) //nolint:gosec // vertex counts come from slices
	if len(m.vbos) > 0 && m.numVertices != n {
		return 0, fmt.Errorf("%w: %q has %d vertices, buffer has %d", ErrVertexCountMismatch, m.name, m.numVertices, n)
	}
	if uint64(len(data)) != stride*uint64(n) {
		return 0, fmt.Errorf("%w: %q: %d bytes for %d vertices of %d bytes", ErrVertexCountMismatch, m.name, len(data), n, stride)
	}
	id := len(m.vbos)
	buf, err := m.device.CreateBuffer(fmt.Sprintf("%s_vbo%d", m.name, id), gputypes.BufferUsageVertex, data)
	if err != nil {
		return 0, fmt.Errorf("mesh: %q: %w", m.name, err)
	}
	m.vbos = append(m.vbos, vertexBuffer{buf: buf, format: format, stride: stride})
	m.numVertices = n
	return id, nil
}

// AddIndexBuffer uploads indices, replacing the current index buffer.
func (m *Mesh) AddIndexBuffer(indices []uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addIndexBufferLocked(indices)
}

func (m *Mesh) addIndexBufferLocked(indices []uint32) error {
	if m.device == nil {
		return fmt.Errorf("%w: add index buffer to %q", ErrNoDevice, m.name)
	}
	buf, err := m.device.CreateBuffer(m.name+"_ibo", gputypes.BufferUsageIndex, gpu.Uint32Bytes(indices))
	if err != nil {
		return fmt.Errorf("mesh: %q: %w", m.name, err)
	}
	if m.ibo != nil {
		m.device.DestroyBuffer(m.ibo)
	}
	m.ibo = buf
	m.numIndices = uint32(len(indices)) //nolint:gosec // index counts come from slices
	return nil
}

// UpdateVertexBuffer overwrites the contents of vertex buffer id. data
// must hold exactly one element per vertex.
func (m *Mesh) UpdateVertexBuffer(id int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || id >= len(m.vbos) {
		return fmt.Errorf("%w: %d of %d in %q", ErrBufferID, id, len(m.vbos), m.name)
	}
	vb := m.vbos[id]
	if want := vb.stride * uint64(m.numVertices); uint64(len(data)) != want {
		return fmt.Errorf("%w: %q: %d bytes, want %d", ErrVertexCountMismatch, m.name, len(data), want)
	}
	return m.device.WriteBuffer(vb.buf, 0, data)
}

// VertexBuffer returns vertex buffer id, or nil.
func (m *Mesh) VertexBuffer(id int) *gpu.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 0 || id >= len(m.vbos) {
		return nil
	}
	return m.vbos[id].buf
}

// IndexBuffer returns the index buffer, or nil.
func (m *Mesh) IndexBuffer() *gpu.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ibo
}

// NumVertexBuffers returns the number of attached vertex buffers.
func (m *Mesh) NumVertexBuffers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vbos)
}

// Counts returns the number of uploaded vertices and indices.
func (m *Mesh) Counts() (vertices, indices uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numVertices, m.numIndices
}

// VertexLayouts returns one pipeline vertex buffer layout per vertex
// buffer, each with a single attribute at shader location = buffer id.
func (m *Mesh) VertexLayouts() []gputypes.VertexBufferLayout {
	m.mu.Lock()
	defer m.mu.Unlock()
	layouts := make([]gputypes.VertexBufferLayout, len(m.vbos))
	for i, vb := range m.vbos {
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: vb.stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: vb.format, Offset: 0, ShaderLocation: uint32(i)}, //nolint:gosec // few buffers
			},
		}
	}
	return layouts
}

// DrawCall returns the draw parameters: indexed when an index buffer is
// attached, otherwise over all vertices.
func (m *Mesh) DrawCall() DrawCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ibo != nil {
		return DrawCall{Topology: m.topology, Indexed: true, Count: m.numIndices}
	}
	return DrawCall{Topology: m.topology, Count: m.numVertices}
}

// Destroy frees the GPU buffers and drops the geometry and material.
func (m *Mesh) Destroy() {
	m.mu.Lock()
	m.clearLocked()
	geo, mat := m.geometry, m.material
	m.geometry, m.material = geometry.Handle{}, material.Handle{}
	m.mu.Unlock()
	geo.Drop()
	mat.Drop()
}

// FormatSize returns the byte size of one element of format.
func FormatSize(format gputypes.VertexFormat) (uint64, error) {
	switch format {
	case gputypes.VertexFormatFloat32:
		return 4, nil
	case gputypes.VertexFormatFloat32x2:
		return 8, nil
	case gputypes.VertexFormatFloat32x3:
		return 12, nil
	case gputypes.VertexFormatFloat32x4:
		return 16, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}
