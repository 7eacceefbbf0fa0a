// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/anim"
	"github.com/gogpu/gres/camera"
	"github.com/gogpu/gres/drawelement"
	"github.com/gogpu/gres/font"
	"github.com/gogpu/gres/geometry"
	"github.com/gogpu/gres/material"
	"github.com/gogpu/gres/math3d"
	"github.com/gogpu/gres/mesh"
	"github.com/gogpu/gres/shader"
	"github.com/gogpu/gres/texture"
)

// Name normalizes a resource name to Unicode NFC, the form every manifest
// name and reference is registered and looked up in.
func Name(s string) string { return norm.NFC.String(s) }

// LoadManifest reads the manifest at path and builds its resources.
func (s *Scene) LoadManifest(path string) error {
	m, err := ReadManifest(path)
	if err != nil {
		return err
	}
	return s.Load(m, filepath.Dir(path))
}

// Load builds every resource of m, resolving relative paths against dir.
// Kinds are built in dependency order, so references only need to name
// entries of an earlier kind. A failing entry does not stop the others;
// all failures are returned joined.
func (s *Scene) Load(m *Manifest, dir string) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrShutdown
	}

	l := &loader{s: s, dir: dir}
	for _, t := range m.Textures {
		l.check("texture", t.Name, l.texture(t))
	}
	for _, f := range m.Fonts {
		l.check("font", f.Name, l.font(f))
	}
	for _, sh := range m.Shaders {
		l.check("shader", sh.Name, l.shader(sh))
	}
	for _, mat := range m.Materials {
		l.check("material", mat.Name, l.material(mat))
	}
	for _, me := range m.Meshes {
		l.check("mesh", me.Name, l.mesh(me))
	}
	for _, d := range m.Drawelements {
		l.check("drawelement", d.Name, l.drawelement(d))
	}
	for _, c := range m.Cameras {
		l.check("camera", c.Name, l.camera(c))
	}
	for _, a := range m.Animations {
		l.check("animation", a.Name, l.animation(a))
	}

	err := errors.Join(l.errs...)
	s.log().Info("scene: manifest loaded", "dir", dir, "built", l.built, "failed", len(l.errs))
	return err
}

type loader struct {
	s     *Scene
	dir   string
	errs  []error
	built int
}

func (l *loader) check(kind, name string, err error) {
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s %q: %w", kind, name, err))
		return
	}
	l.built++
}

func (l *loader) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.dir, p)
}

// register drops the handle returned by a registration; the directory
// entry keeps the resource alive.
func register[K gres.Resource](h gres.Handle[K], err error) error {
	h.Drop()
	return err
}

func construct[K gres.Resource](r *gres.Registry[K], name string, ctor gres.Constructor[K]) error {
	h, err := r.Construct(name, ctor)
	return register(h, err)
}

func (l *loader) texture(t TextureSpec) error {
	opts := []texture.LoadOption{texture.WithMaxSize(t.MaxSize)}
	if dev := l.s.device; dev != nil {
		opts = append(opts, texture.WithDevice(dev))
	}
	return construct(l.s.Textures, Name(t.Name), texture.FromFile(l.path(t.Path), opts...))
}

func (l *loader) font(f FontSpec) error {
	return construct(l.s.Fonts, Name(f.Name), font.FromFile(l.path(f.Path)))
}

func (l *loader) shader(sh ShaderSpec) error {
	var opts []shader.Option
	if dev := l.s.device; dev != nil {
		opts = append(opts, shader.WithDevice(dev))
	}
	var ctor gres.Constructor[*shader.Shader]
	switch {
	case sh.Builtin != "":
		ctor = shader.FromBuiltin(sh.Builtin, opts...)
	case sh.Path != "":
		ctor = shader.FromFile(l.path(sh.Path), opts...)
	default:
		ctor = shader.FromSource(sh.Source, opts...)
	}
	return construct(l.s.Shaders, Name(sh.Name), ctor)
}

func (l *loader) material(m MaterialSpec) error {
	p := material.Params{Floats: m.Floats}
	if m.BaseColor != nil {
		c, err := vec4("base_color", m.BaseColor)
		if err != nil {
			return err
		}
		p.BaseColor = c
	}
	if len(m.Vec4s) > 0 {
		p.Vec4s = make(map[string]math3d.Vec4, len(m.Vec4s))
		for k, v := range m.Vec4s {
			c, err := vec4(k, v)
			if err != nil {
				return err
			}
			p.Vec4s[k] = c
		}
	}
	if len(m.Textures) > 0 {
		p.Textures = make(map[string]texture.Handle, len(m.Textures))
		defer func() {
			for _, h := range p.Textures {
				h.Drop()
			}
		}()
		for slot, name := range m.Textures {
			h, err := l.s.Textures.Alias(Name(name))
			if err != nil {
				return err
			}
			p.Textures[slot] = h
		}
	}
	return construct(l.s.Materials, Name(m.Name), material.Constructor(p))
}

func (l *loader) mesh(m MeshSpec) error {
	var mat material.Handle
	if m.Material != "" {
		h, err := l.s.Materials.Alias(Name(m.Material))
		if err != nil {
			return err
		}
		mat = h
	}
	defer mat.Drop()

	v := vecReader{}
	center := v.vec3("center", m.Center, math3d.Vec3{})
	name := Name(m.Name)
	b := l.s.Builder()

	var h mesh.Handle
	var err error
	switch strings.ToLower(m.Type) {
	case "cuboid", "box":
		size := v.vec3("size", m.Size, math3d.Splat3(1))
		if v.err == nil {
			h, err = b.Cuboid(name, size.X, size.Y, size.Z, center, mat)
		}
	case "sphere":
		if v.err == nil {
			sectors, stacks := cmp.Or(m.Sectors, geometry.DefaultSectors), cmp.Or(m.Stacks, geometry.DefaultStacks)
			h, err = b.SphereTessellated(name, cmp.Or(m.Radius, 1), center, sectors, stacks, mat)
		}
	case "ellipsoid":
		if len(m.Axes) != 3 {
			return fmt.Errorf("%w: axes needs 3 vectors, got %d", ErrInvalidVector, len(m.Axes))
		}
		pc1 := v.vec3("axes[0]", m.Axes[0], math3d.Vec3{})
		pc2 := v.vec3("axes[1]", m.Axes[1], math3d.Vec3{})
		pc3 := v.vec3("axes[2]", m.Axes[2], math3d.Vec3{})
		if v.err == nil {
			h, err = b.Ellipsoid(name, pc1, pc2, pc3, center, mat)
		}
	case "cylinder":
		axis := v.vec3("axis", m.Axis, math3d.V3(0, 1, 0))
		if v.err == nil {
			h, err = b.Cylinder(name, cmp.Or(m.Radius, 1), cmp.Or(m.Height, 1), axis, center, mat)
		}
	case "line":
		from, to := v.vec3("from", m.From, math3d.Vec3{}), v.vec3("to", m.To, math3d.V3(1, 0, 0))
		if v.err == nil {
			h, err = b.Line(name, from, to, mat)
		}
	case "bbox", "boundingbox":
		lo, hi := v.vec3("min", m.Min, math3d.Splat3(-1)), v.vec3("max", m.Max, math3d.Splat3(1))
		if v.err == nil {
			h, err = b.BoundingBox(name, lo, hi, mat)
		}
	case "voxelgrid":
		if len(m.Grid) != 3 {
			return fmt.Errorf("%w: grid needs 3 counts, got %d", ErrInvalidVector, len(m.Grid))
		}
		h, err = b.VoxelGrid(name, m.Grid[0], m.Grid[1], m.Grid[2], cmp.Or(m.Scale, 1), mat)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMeshType, m.Type)
	}
	if v.err != nil {
		return v.err
	}
	return register(h, err)
}

func (l *loader) drawelement(d DrawelementSpec) error {
	m, err := l.s.Meshes.Alias(Name(d.Mesh))
	if err != nil {
		return err
	}
	defer m.Drop()
	sh, err := l.s.Shaders.Alias(Name(d.Shader))
	if err != nil {
		return err
	}
	defer sh.Drop()

	v := vecReader{}
	t := v.vec3("translate", d.Translate, math3d.Vec3{})
	sc := v.vec3("scale", d.Scale, math3d.Splat3(1))
	if v.err != nil {
		return v.err
	}
	opts := []drawelement.Option{drawelement.WithModel(math3d.Translate4(t).Mul(math3d.Scale4(sc)))}
	if dev := l.s.device; dev != nil {
		opts = append(opts, drawelement.WithDevice(dev))
	}
	return construct(l.s.Drawelements, Name(d.Name), drawelement.Constructor(m, sh, opts...))
}

func (l *loader) camera(c CameraSpec) error {
	v := vecReader{}
	pos := v.vec3("pos", c.Pos, math3d.Vec3{})
	lookAt := v.vec3("look_at", c.LookAt, pos.Add(math3d.V3(1, 0, 0)))
	up := v.vec3("up", c.Up, math3d.V3(0, 1, 0))
	if v.err != nil {
		return v.err
	}
	opts := []camera.Option{camera.WithLookAt(pos, lookAt, up)}
	near, far := cmp.Or(c.Near, 0.01), cmp.Or(c.Far, 1000)
	switch {
	case c.Ortho != nil:
		if len(c.Ortho) != 4 {
			return fmt.Errorf("%w: ortho needs 4 bounds, got %d", ErrInvalidVector, len(c.Ortho))
		}
		opts = append(opts, camera.WithOrtho(c.Ortho[0], c.Ortho[1], c.Ortho[2], c.Ortho[3], near, far))
	default:
		opts = append(opts, camera.WithPerspective(cmp.Or(c.Fov, 70), near, far))
	}

	h, err := l.s.Cameras.Construct(Name(c.Name), camera.Constructor(opts...))
	if err != nil {
		return err
	}
	defer h.Drop()
	if c.Current {
		l.s.MakeCameraCurrent(h)
	}
	return nil
}

func (l *loader) animation(a AnimationSpec) error {
	nodes := make([]anim.Node, len(a.Nodes))
	v := vecReader{}
	for i, n := range a.Nodes {
		nodes[i] = anim.Node{
			Pos:    v.vec3(fmt.Sprintf("nodes[%d].pos", i), n.Pos, math3d.Vec3{}),
			LookAt: v.vec3(fmt.Sprintf("nodes[%d].look_at", i), n.LookAt, math3d.Vec3{}),
		}
	}
	if v.err != nil {
		return v.err
	}
	interval := time.Duration(a.IntervalMS) * time.Millisecond
	h, err := l.s.Animations.Construct(Name(a.Name), anim.Constructor(interval, nodes...))
	if err != nil {
		return err
	}
	defer h.Drop()
	if a.Play {
		h.Get().Play()
	}
	if a.Current {
		l.s.MakeAnimationCurrent(h)
	}
	return nil
}

// vecReader converts manifest vectors, keeping the first error.
type vecReader struct {
	err error
}

func (r *vecReader) vec3(field string, v []float32, def math3d.Vec3) math3d.Vec3 {
	switch {
	case v == nil:
		return def
	case len(v) != 3:
		if r.err == nil {
			r.err = fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalidVector, field, len(v))
		}
		return def
	}
	return math3d.V3(v[0], v[1], v[2])
}

func vec4(field string, v []float32) (math3d.Vec4, error) {
	switch len(v) {
	case 3:
		return math3d.V4(v[0], v[1], v[2], 1), nil
	case 4:
		return math3d.V4(v[0], v[1], v[2], v[3]), nil
	}
	return math3d.Vec4{}, fmt.Errorf("%w: %s needs 3 or 4 components, got %d", ErrInvalidVector, field, len(v))
}
