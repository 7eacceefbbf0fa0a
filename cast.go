// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"fmt"
	"runtime"
)

// Cast returns a handle of kind To sharing ownership of the resource owned
// by h. It serves both directions: from a concrete kind to an interface kind
// it implements, and from an interface kind back to the concrete kind.
//
// The new handle takes its own unit of ownership on the same owner count
// and stays bound to h's directory, so Release on it affects the entry h
// was registered under. Casting a null handle returns a null handle.
//
// Cast panics with a *KindMismatchError if the resource is not a To; use
// IsKind to test first.
//
// Example:
//
//	prim, _ := meshes.Alias("earth")          // Handle[mesh.Primitive]
//	sphere := gres.Cast[*mesh.Sphere](prim)   // downcast
//	back := gres.Cast[mesh.Primitive](sphere) // upcast, same resource
func Cast[To, From Resource](h Handle[From]) Handle[To] {
	if !h.Valid() {
		return Handle[To]{}
	}
	b := h.o.st.b
	if _, ok := b.value.(To); !ok {
		panic(&KindMismatchError{
			Name:   b.name,
			From:   h.Kind(),
			To:     kindOf[To](),
			Actual: fmt.Sprintf("%T", b.value),
		})
	}
	o := newOwner(b)
	runtime.KeepAlive(h.o)
	if o == nil {
		return Handle[To]{}
	}
	return Handle[To]{o: o, dir: h.dir}
}

// IsKind reports whether the resource owned by h is a To. It is false for
// a null handle.
func IsKind[To any, From Resource](h Handle[From]) bool {
	if !h.Valid() {
		return false
	}
	_, ok := h.o.st.b.value.(To)
	return ok
}

// Transfer moves the resource owned by h from its directory into the
// registry into, under the same name. The source entry is removed if it
// still refers to this resource; h itself stays valid and bound to its old
// directory.
//
// A resource that is not a To yields a *KindMismatchError (returned, not
// raised, since the target kind is chosen at runtime by callers such as
// manifest loaders). A null handle yields a *NullHandleError.
func Transfer[To, From Resource](h Handle[From], into *Registry[To]) (Handle[To], error) {
	if !h.Valid() {
		return Handle[To]{}, &NullHandleError{Kind: h.Kind()}
	}
	b := h.o.st.b
	if _, ok := b.value.(To); !ok {
		return Handle[To]{}, &KindMismatchError{
			Name:   b.name,
			From:   h.Kind(),
			To:     into.Kind(),
			Actual: fmt.Sprintf("%T", b.value),
		}
	}
	o := newOwner(b)
	runtime.KeepAlive(h.o)
	if o == nil {
		return Handle[To]{}, &NullHandleError{Kind: h.Kind()}
	}
	moved := Handle[To]{o: o, dir: into}
	if h.dir == directory(into) {
		return moved, nil
	}
	if err := into.insert(b); err != nil {
		moved.Drop()
		return Handle[To]{}, err
	}
	if h.dir != nil {
		h.dir.eraseEntry(b)
	}
	into.log().Debug("gres: transferred", "name", b.name, "from", h.Kind(), "to", into.Kind())
	return moved, nil
}
