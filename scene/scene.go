// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scene bundles one registry per resource kind with the GPU device
// they share, the current camera and the current animation.
//
// A Scene is the explicit initialization point of an application: create
// it once, build resources into its registries (directly or from a
// manifest), and call Shutdown before exiting.
//
//	s, err := scene.New(scene.WithHeadless())
//	if err != nil {
//		return err
//	}
//	defer s.Shutdown()
//	if err := s.LoadManifest("assets/scene.yaml"); err != nil {
//		return err
//	}
package scene

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/anim"
	"github.com/gogpu/gres/camera"
	"github.com/gogpu/gres/drawelement"
	"github.com/gogpu/gres/font"
	"github.com/gogpu/gres/geometry"
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/gres/material"
	"github.com/gogpu/gres/mesh"
	"github.com/gogpu/gres/shader"
	"github.com/gogpu/gres/texture"
)

// ErrShutdown is returned by operations on a scene after Shutdown.
var ErrShutdown = errors.New("scene: shut down")

// Scene owns the registries of every resource kind.
type Scene struct {
	Geometries   *geometry.Registry
	Textures     *texture.Registry
	Fonts        *font.Registry
	Shaders      *shader.Registry
	Materials    *material.Registry
	Meshes       *mesh.Registry
	Drawelements *drawelement.Registry
	Cameras      *camera.Registry
	Animations   *anim.Registry

	device     *gpu.Device
	ownsDevice bool
	logger     *slog.Logger

	mu        sync.Mutex
	camera    camera.Handle
	animation anim.Handle
	closed    bool
}

// New creates a scene with empty registries.
func New(opts ...Option) (*Scene, error) {
	o := newOptions(opts)
	s := &Scene{device: o.device, logger: o.logger}
	if o.headless && s.device == nil {
		dev, err := gpu.NewHeadless()
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		s.device, s.ownsDevice = dev, true
	}

	ropts := o.registryOptions()
	s.Geometries = geometry.NewRegistry(ropts...)
	s.Textures = texture.NewRegistry(ropts...)
	s.Fonts = font.NewRegistry(ropts...)
	s.Shaders = shader.NewRegistry(ropts...)
	s.Materials = material.NewRegistry(ropts...)
	s.Meshes = mesh.NewRegistry(ropts...)
	s.Drawelements = drawelement.NewRegistry(ropts...)
	s.Cameras = camera.NewRegistry(ropts...)
	s.Animations = anim.NewRegistry(ropts...)

	s.log().Info("scene: created", "device", s.device != nil, "headless", s.ownsDevice)
	return s, nil
}

func (s *Scene) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return gres.Logger()
}

// Device returns the GPU device, or nil for a CPU-only scene.
func (s *Scene) Device() *gpu.Device { return s.device }

// Builder returns a mesh builder registering into the scene.
func (s *Scene) Builder() *mesh.Builder {
	return &mesh.Builder{Meshes: s.Meshes, Geometries: s.Geometries, Device: s.device}
}

// CurrentCamera returns a new handle to the current camera. Without one,
// the camera registered as camera.DefaultName is used, created on first
// use.
func (s *Scene) CurrentCamera() (camera.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.camera.Valid() {
		return s.camera.Clone(), nil
	}
	if s.closed {
		return camera.Handle{}, ErrShutdown
	}
	if h, err := s.Cameras.Alias(camera.DefaultName); err == nil {
		return h, nil
	}
	return s.Cameras.Construct(camera.DefaultName, camera.Constructor())
}

// MakeCameraCurrent makes h the current camera. A null handle restores the
// default camera.
func (s *Scene) MakeCameraCurrent(h camera.Handle) {
	owned := h.Clone()
	s.mu.Lock()
	old := s.camera
	s.camera = owned
	s.mu.Unlock()
	old.Drop()
}

// CurrentAnimation returns a new handle to the current animation, or a
// null handle.
func (s *Scene) CurrentAnimation() anim.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animation.Clone()
}

// MakeAnimationCurrent makes h the animation driven by Update. A null
// handle clears it.
func (s *Scene) MakeAnimationCurrent(h anim.Handle) {
	owned := h.Clone()
	s.mu.Lock()
	old := s.animation
	s.animation = owned
	s.mu.Unlock()
	old.Drop()
}

// Update advances the current animation by dt, moving the current camera.
func (s *Scene) Update(dt time.Duration) error {
	a := s.CurrentAnimation()
	defer a.Drop()
	if !a.Valid() {
		return nil
	}
	cam, err := s.CurrentCamera()
	if err != nil {
		return err
	}
	defer cam.Drop()
	a.Get().Update(dt, cam.Get())
	return nil
}

// Draws returns handles to the drawable elements in pipeline order. Drop
// them with drawelement.DropAll after drawing.
func (s *Scene) Draws() []drawelement.Handle {
	return drawelement.Sorted(s.Drawelements)
}

// Entry describes one registered resource.
type Entry struct {
	Kind   string
	Name   string
	Owners int64
}

// Entries iterates over every registered resource, kind by kind in
// teardown order and by name within a kind.
func (s *Scene) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, r := range s.registries() {
			for _, name := range r.Names() {
				if !yield(Entry{Kind: r.Kind(), Name: name, Owners: r.Owners(name)}) {
					return
				}
			}
		}
	}
}

// Glob returns the names of kind matching a doublestar pattern.
func (s *Scene) Glob(kind, pattern string) ([]string, error) {
	for _, r := range s.registries() {
		if r.Kind() == kind {
			return r.Glob(pattern)
		}
	}
	return nil, fmt.Errorf("scene: unknown kind %q", kind)
}

// Kinds returns the registry kind names in teardown order.
func (s *Scene) Kinds() []string {
	regs := s.registries()
	kinds := make([]string, len(regs))
	for i, r := range regs {
		kinds[i] = r.Kind()
	}
	return kinds
}

// directory is the kind-independent part of a registry.
type directory interface {
	Kind() string
	Names() []string
	Owners(name string) int64
	Glob(pattern string) ([]string, error)
	Len() int
	Shutdown()
}

// registries lists the registries in teardown order: every kind comes
// before the kinds it holds handles to.
func (s *Scene) registries() []directory {
	return []directory{
		s.Drawelements,
		s.Meshes,
		s.Materials,
		s.Shaders,
		s.Textures,
		s.Fonts,
		s.Geometries,
		s.Animations,
		s.Cameras,
	}
}

// Shutdown releases every resource in dependency order, then closes the
// device if the scene opened it. It is safe to call more than once.
func (s *Scene) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cam, a := s.camera, s.animation
	s.camera, s.animation = camera.Handle{}, anim.Handle{}
	s.mu.Unlock()
	cam.Drop()
	a.Drop()

	for _, r := range s.registries() {
		r.Shutdown()
	}
	if s.ownsDevice {
		s.device.Close()
	}
	s.log().Info("scene: shut down")
}
