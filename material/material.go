// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package material provides the Material resource kind: named texture
// slots and scalar or vector parameters shared by meshes.
package material

import (
	"maps"
	"slices"
	"sync"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/gres/math3d"
	"github.com/gogpu/gres/texture"
)

// Kind is the registry kind name of materials.
const Kind = "material"

// Well-known slot and parameter names.
const (
	SlotAlbedo    = "albedo"
	SlotNormal    = "normal"
	SlotRoughness = "roughness"

	ParamBaseColor = "base_color"
)

type (
	// Handle is a shared handle to a registered Material.
	Handle = gres.Handle[*Material]
	// Registry is the directory of materials.
	Registry = gres.Registry[*Material]
)

// NewRegistry creates an empty material registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Material](Kind, opts...)
}

// Params are the initial contents of a material. Texture handles are
// cloned; the caller keeps its own handles.
type Params struct {
	BaseColor math3d.Vec4
	Floats    map[string]float32
	Vec4s     map[string]math3d.Vec4
	Textures  map[string]texture.Handle
}

// Material maps slot names to textures and parameter names to values.
// The material owns one handle per texture slot.
//
// Material is safe for concurrent use.
type Material struct {
	name string

	mu       sync.RWMutex
	textures map[string]texture.Handle
	floats   map[string]float32
	vec4s    map[string]math3d.Vec4
}

// New returns an empty material with an opaque white base color.
func New(name string) *Material {
	return &Material{
		name:     name,
		textures: make(map[string]texture.Handle),
		floats:   make(map[string]float32),
		vec4s:    map[string]math3d.Vec4{ParamBaseColor: math3d.V4(1, 1, 1, 1)},
	}
}

// Constructor returns a registry constructor for a material built from p.
// A zero BaseColor keeps the default.
func Constructor(p Params) gres.Constructor[*Material] {
	return func(name string) (*Material, error) {
		m := New(name)
		for k, v := range p.Floats {
			m.floats[k] = v
		}
		for k, v := range p.Vec4s {
			m.vec4s[k] = v
		}
		if p.BaseColor != (math3d.Vec4{}) {
			m.vec4s[ParamBaseColor] = p.BaseColor
		}
		for slot, h := range p.Textures {
			if h.Valid() {
				m.textures[slot] = h.Clone()
			}
		}
		return m, nil
	}
}

// Name returns the material name.
func (m *Material) Name() string { return m.name }

// SetTexture binds a texture to slot, replacing the previous one.
// A null handle clears the slot.
func (m *Material) SetTexture(slot string, h texture.Handle) {
	var owned texture.Handle
	if h.Valid() {
		owned = h.Clone()
	}
	m.mu.Lock()
	old, had := m.textures[slot]
	if owned.Valid() {
		m.textures[slot] = owned
	} else {
		delete(m.textures, slot)
	}
	m.mu.Unlock()
	if had {
		old.Drop()
	}
}

// RemoveTexture clears slot.
func (m *Material) RemoveTexture(slot string) {
	m.SetTexture(slot, texture.Handle{})
}

// Texture returns the texture bound to slot, or nil.
func (m *Material) Texture(slot string) *texture.Texture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.textures[slot]; ok {
		return h.Get()
	}
	return nil
}

// TextureHandle returns a new handle to the texture bound to slot, or a
// null handle. The caller owns the returned handle.
func (m *Material) TextureHandle(slot string) texture.Handle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.textures[slot].Clone()
}

// Slots returns the sorted names of the bound texture slots.
func (m *Material) Slots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.textures))
}

// SetFloat sets a scalar parameter.
func (m *Material) SetFloat(name string, v float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floats[name] = v
}

// Float returns a scalar parameter.
func (m *Material) Float(name string) (float32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.floats[name]
	return v, ok
}

// SetVec4 sets a vector parameter.
func (m *Material) SetVec4(name string, v math3d.Vec4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vec4s[name] = v
}

// Vec4 returns a vector parameter.
func (m *Material) Vec4(name string) (math3d.Vec4, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vec4s[name]
	return v, ok
}

// BaseColor returns the base color parameter.
func (m *Material) BaseColor() math3d.Vec4 {
	c, _ := m.Vec4(ParamBaseColor)
	return c
}

// SetBaseColor sets the base color parameter.
func (m *Material) SetBaseColor(c math3d.Vec4) { m.SetVec4(ParamBaseColor, c) }

// Params returns the sorted names of the scalar and vector parameters.
func (m *Material) Params() (floats, vec4s []string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.floats)), slices.Sorted(maps.Keys(m.vec4s))
}

// UniformBytes packs the parameters for a uniform buffer: the base color,
// then the other vector parameters and finally the scalars, each group in
// name order. Scalars are padded to a multiple of four.
func (m *Material) UniformBytes() []byte {
	floats, vec4s := m.Params()
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]float32, 0, 4*len(vec4s)+len(floats)+3)
	appendVec4 := func(v math3d.Vec4) {
		values = append(values, v.X, v.Y, v.Z, v.W)
	}
	appendVec4(m.vec4s[ParamBaseColor])
	for _, name := range vec4s {
		if name != ParamBaseColor {
			appendVec4(m.vec4s[name])
		}
	}
	for _, name := range floats {
		values = append(values, m.floats[name])
	}
	for len(values)%4 != 0 {
		values = append(values, 0)
	}
	return gpu.Float32Bytes(values)
}

// Destroy drops the texture handles owned by the material.
func (m *Material) Destroy() {
	m.mu.Lock()
	textures := m.textures
	m.textures = make(map[string]texture.Handle)
	m.mu.Unlock()
	for _, slot := range slices.Sorted(maps.Keys(textures)) {
		h := textures[slot]
		h.Drop()
	}
}
