// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gres provides named, shared-ownership handles to GPU and scene
// resources.
//
// # Overview
//
// Client code refers to meshes, shaders, textures, cameras and animations
// by stable string names instead of raw pointers. Each resource kind has its
// own Registry, a directory mapping names to resources. A Handle is a
// reference-counted owner of one registered resource; the directory entry is
// one more owner, so a resource stays alive while it is registered.
//
// # Quick Start
//
//	cams := gres.NewRegistry[*camera.Camera]("camera")
//	defer cams.Shutdown()
//
//	cam1, err := cams.Construct("cam1", camera.Constructor())
//	if err != nil {
//	    return err
//	}
//	defer cam1.Drop()
//
//	// Anywhere else in the program:
//	same, err := cams.Alias("cam1")
//	same.Get().SetPosition(math3d.Vec3{X: 0, Y: 2, Z: 5})
//
// # Lifetime
//
// A resource is created only through Registry.Construct or Registry.Adopt
// and is destroyed when its last owner lets go: every handle dropped and the
// directory entry removed by Handle.Release, Registry.Erase, Registry.Clear
// or Registry.Shutdown. Resources implementing Destroyer are told at that
// point. Dropping handles never removes directory entries.
//
// Handle.Release(false) removes the entry only when nobody but the caller
// still holds the resource; Release(true) removes it regardless.
//
// # Kinds
//
// A registry kind may be a concrete pointer type or an interface. Cast moves
// a handle between an interface kind and the concrete types implementing it
// without copying or re-counting the resource, and IsKind tests the dynamic
// type first. Transfer re-registers a resource in another kind's registry.
//
// # Errors
//
// Lookup misses and stale releases are returned as *LookupError values
// (errors.Is ErrNotFound / ErrStaleEntry). Dereferencing a null handle and
// casting to an incompatible kind are programming errors and panic with
// *NullHandleError and *KindMismatchError.
//
// # Sub-packages
//
//   - math3d: vectors and matrices for cameras and transforms
//   - gpu: device plumbing over gogpu/wgpu HAL (headless noop device included)
//   - geometry, texture, shader, material, mesh: GPU-backed resource kinds
//   - camera, anim, drawelement: scene-side resource kinds
//   - scene: one registry per kind, ordered teardown, YAML/TOML manifests
package gres
