// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package drawelement provides the Drawelement resource kind: a mesh drawn
// with a shader under a model transform.
package drawelement

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres"
	"github.com/gogpu/gres/camera"
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/gres/math3d"
	"github.com/gogpu/gres/mesh"
	"github.com/gogpu/gres/shader"
)

// Kind is the registry kind name of drawelements.
const Kind = "drawelement"

// UniformSize is the byte size of the packed Uniforms block.
const UniformSize = 4 * 16 * 4

// ErrNoDevice is returned by GPU operations on a drawelement without device.
var ErrNoDevice = errors.New("drawelement: no device")

type (
	// Handle is a shared handle to a registered Drawelement.
	Handle = gres.Handle[*Drawelement]
	// Registry is the directory of drawelements.
	Registry = gres.Registry[*Drawelement]
)

// NewRegistry creates an empty drawelement registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Drawelement](Kind, opts...)
}

// Uniforms is the per-draw transform block read by the built-in shaders.
type Uniforms struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	ViewNormal math3d.Mat4
	Proj       math3d.Mat4
}

// Bytes packs u in declaration order as four WGSL mat4x4<f32>.
func (u Uniforms) Bytes() []byte {
	out := make([]byte, 0, UniformSize)
	for _, m := range []math3d.Mat4{u.Model, u.View, u.ViewNormal, u.Proj} {
		out = append(out, gpu.Mat4Bytes(m)...)
	}
	return out
}

// Drawelement owns a mesh handle and a shader handle; either may be null.
// It is safe for concurrent use.
type Drawelement struct {
	name string

	mu     sync.Mutex
	mesh   mesh.Handle
	shader shader.Handle
	model  math3d.Mat4
	device *gpu.Device
	ubo    *gpu.Buffer
}

// New builds a drawelement with an identity model matrix. Both handles
// are cloned.
func New(name string, m mesh.Handle, s shader.Handle, opts ...Option) *Drawelement {
	o := newOptions(opts)
	return &Drawelement{
		name:   name,
		mesh:   m.Clone(),
		shader: s.Clone(),
		model:  o.model,
		device: o.device,
	}
}

// Constructor returns a registry constructor for a drawelement.
func Constructor(m mesh.Handle, s shader.Handle, opts ...Option) gres.Constructor[*Drawelement] {
	return func(name string) (*Drawelement, error) {
		return New(name, m, s, opts...), nil
	}
}

// Name returns the drawelement name.
func (d *Drawelement) Name() string { return d.name }

// Mesh returns the drawn mesh, or nil.
func (d *Drawelement) Mesh() *mesh.Mesh {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mesh.Valid() {
		return nil
	}
	return d.mesh.Get().Base()
}

// MeshHandle returns a new handle to the mesh.
func (d *Drawelement) MeshHandle() mesh.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mesh.Clone()
}

// Shader returns the shader, or nil.
func (d *Drawelement) Shader() *shader.Shader {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.shader.Valid() {
		return nil
	}
	return d.shader.Get()
}

// SetMesh replaces the mesh. A null handle removes it.
func (d *Drawelement) SetMesh(m mesh.Handle) {
	owned := m.Clone()
	d.mu.Lock()
	old := d.mesh
	d.mesh = owned
	d.mu.Unlock()
	old.Drop()
}

// SetShader replaces the shader. A null handle removes it.
func (d *Drawelement) SetShader(s shader.Handle) {
	owned := s.Clone()
	d.mu.Lock()
	old := d.shader
	d.shader = owned
	d.mu.Unlock()
	old.Drop()
}

// Model returns the model matrix.
func (d *Drawelement) Model() math3d.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model
}

// SetModel sets the model matrix.
func (d *Drawelement) SetModel(m math3d.Mat4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.model = m
}

// Drawable reports whether both a mesh and a shader are set.
func (d *Drawelement) Drawable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mesh.Valid() && d.shader.Valid()
}

// Uniforms returns the transform block for drawing through cam. A nil
// camera yields identity view and projection.
func (d *Drawelement) Uniforms(cam *camera.Camera) Uniforms {
	u := Uniforms{
		Model:      d.Model(),
		View:       math3d.Identity4(),
		ViewNormal: math3d.Identity4(),
		Proj:       math3d.Identity4(),
	}
	if cam != nil {
		u.View, u.ViewNormal, u.Proj = cam.View, cam.ViewNormal, cam.Proj
	}
	return u
}

// Bind writes the uniforms for cam into the drawelement's uniform buffer,
// creating it on first use, and returns the buffer.
func (d *Drawelement) Bind(cam *camera.Camera) (*gpu.Buffer, error) {
	data := d.Uniforms(cam).Bytes()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return nil, fmt.Errorf("drawelement %q: bind: %w", d.name, ErrNoDevice)
	}
	if d.ubo == nil {
		ubo, err := d.device.CreateBuffer(d.name+"_ubo", gputypes.BufferUsageUniform, data)
		if err != nil {
			return nil, fmt.Errorf("drawelement %q: %w", d.name, err)
		}
		d.ubo = ubo
		return ubo, nil
	}
	if err := d.device.WriteBuffer(d.ubo, 0, data); err != nil {
		return nil, fmt.Errorf("drawelement %q: %w", d.name, err)
	}
	return d.ubo, nil
}

// UniformBuffer returns the uniform buffer, or nil before the first Bind.
func (d *Drawelement) UniformBuffer() *gpu.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ubo
}

// Attach moves the uniform buffer to dev. It is recreated by the next Bind.
func (d *Drawelement) Attach(dev *gpu.Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == dev {
		return
	}
	d.device.DestroyBuffer(d.ubo)
	d.ubo = nil
	d.device = dev
}

// DrawCall returns the mesh draw call; ok is false if nothing can be drawn.
func (d *Drawelement) DrawCall() (call mesh.DrawCall, ok bool) {
	m := d.Mesh()
	if m == nil || !d.Drawable() {
		return call, false
	}
	call = m.DrawCall()
	return call, call.Count > 0
}

// Destroy frees the uniform buffer and drops the mesh and shader.
func (d *Drawelement) Destroy() {
	d.mu.Lock()
	d.device.DestroyBuffer(d.ubo)
	d.ubo = nil
	m, s := d.mesh, d.shader
	d.mesh, d.shader = mesh.Handle{}, shader.Handle{}
	d.mu.Unlock()
	m.Drop()
	s.Drop()
}

// Sorted returns handles to the drawelements of reg ordered by shader name
// then mesh name, the order that minimizes pipeline switches. Elements that
// cannot be drawn are skipped. The caller owns the handles and drops them
// when done drawing, so elements erased meanwhile stay alive.
func Sorted(reg *Registry) []Handle {
	var out []Handle
	for _, name := range reg.Names() {
		h, err := reg.Alias(name)
		if err != nil {
			continue
		}
		if !h.Get().Drawable() {
			h.Drop()
			continue
		}
		out = append(out, h)
	}
	slices.SortStableFunc(out, func(a, b Handle) int {
		da, db := a.Get(), b.Get()
		return cmp.Or(
			cmp.Compare(da.Shader().Name(), db.Shader().Name()),
			cmp.Compare(da.Mesh().Name(), db.Mesh().Name()),
		)
	})
	return out
}

// DropAll drops every handle of hs.
func DropAll(hs []Handle) {
	for i := range hs {
		hs[i].Drop()
	}
}
