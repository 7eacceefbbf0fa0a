// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"reflect"
	"runtime"
	"sync/atomic"
)

// Resource is implemented by every kind stored in a Registry.
// Name is the resource's identity: it is fixed at construction and must
// not change while the resource is registered.
type Resource interface {
	Name() string
}

// Destroyer is implemented by resources that hold state needing explicit
// teardown (GPU objects, nested handles). Destroy is called exactly once,
// when the last owner of the resource lets go of it.
type Destroyer interface {
	Destroy()
}

// block is the shared ownership record of one resource. Every live owner
// token and every directory entry referencing the block counts once.
type block struct {
	value     any
	name      string
	refs      atomic.Int64
	destroyed atomic.Bool
}

func newBlock(res Resource) *block {
	return &block{value: res, name: res.Name()}
}

// retain adds an owner. It fails once the count has dropped to zero: a
// block that started destruction is never revived.
func (b *block) retain() bool {
	for {
		n := b.refs.Load()
		if n <= 0 {
			return false
		}
		if b.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (b *block) release() {
	n := b.refs.Add(-1)
	switch {
	case n == 0:
		b.destroy()
	case n < 0:
		Logger().Warn("gres: owner count below zero", "name", b.name, "owners", n)
	}
}

func (b *block) destroy() {
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	if d, ok := b.value.(Destroyer); ok {
		d.Destroy()
	}
	Logger().Debug("gres: resource destroyed", "name", b.name)
}

// ownerState is kept apart from owner so the cleanup registered on owner
// can run without keeping owner reachable.
type ownerState struct {
	b       *block
	dropped atomic.Bool
}

func (s *ownerState) drop() {
	if s.dropped.CompareAndSwap(false, true) {
		s.b.release()
	}
}

// owner is one unit of ownership. Plain copies of a Handle share it.
type owner struct {
	st      *ownerState
	cleanup runtime.Cleanup
}

// firstOwner returns the owner a new, unpublished block starts with.
func firstOwner(b *block) *owner {
	b.refs.Store(1)
	return track(b)
}

// newOwner adds an owner to b, or returns nil if b is already being
// destroyed. Callers keep the owner they copy from reachable until
// newOwner returns.
func newOwner(b *block) *owner {
	if !b.retain() {
		return nil
	}
	return track(b)
}

func track(b *block) *owner {
	o := &owner{st: &ownerState{b: b}}
	o.cleanup = runtime.AddCleanup(o, (*ownerState).drop, o.st)
	return o
}

func (o *owner) drop() {
	o.st.drop()
	o.cleanup.Stop()
}

// directory is the part of a Registry a handle needs after it was issued.
type directory interface {
	Kind() string
	releaseEntry(b *block, force bool) error
	eraseEntry(b *block)
}

// Handle is a shared-ownership reference to one registered resource.
//
// The zero Handle is null. A bound handle is obtained from
// Registry.Construct, Registry.Adopt, Registry.Alias, Clone, Cast or
// Transfer. Assigning a Handle to another variable shares the same unit of
// ownership; use Clone to take an additional one.
//
// Ownership ends with Drop or Release. A handle that becomes unreachable
// without either is dropped by the runtime after garbage collection; code
// that needs deterministic teardown calls Drop.
type Handle[K Resource] struct {
	o   *owner
	dir directory
}

// Valid reports whether the handle is bound to a resource.
func (h Handle[K]) Valid() bool {
	return h.o != nil && !h.o.st.dropped.Load()
}

// Get returns the resource. It panics with a *NullHandleError if the
// handle is null.
//
// The returned value is owned through h only. Ownership follows
// reachability, not scope: a handle the program no longer refers to may be
// dropped by the collector while the value is still in use, destroying it
// if h was the last owner. Keep h live for as long as the value is used,
// by calling Drop (or runtime.KeepAlive) after the last use.
//
//	cam := h.Get()
//	draw(cam)
//	h.Drop()
func (h Handle[K]) Get() K {
	h.mustBeValid()
	return h.o.st.b.value.(K)
}

// Name returns the name the resource is registered under.
// It panics with a *NullHandleError if the handle is null.
func (h Handle[K]) Name() string {
	h.mustBeValid()
	return h.o.st.b.name
}

// Kind returns the kind name of the directory the handle belongs to.
func (h Handle[K]) Kind() string {
	if h.dir != nil {
		return h.dir.Kind()
	}
	return kindOf[K]()
}

// Owners returns the current owner count of the resource: live handles
// plus directory entries. A null handle reports 0.
func (h Handle[K]) Owners() int64 {
	if !h.Valid() {
		return 0
	}
	return h.o.st.b.refs.Load()
}

// Same reports whether both handles own the same resource.
func (h Handle[K]) Same(other Handle[K]) bool {
	return SameResource(h, other)
}

// Clone returns a new handle sharing ownership of the same resource.
// Cloning a null handle returns a null handle.
func (h Handle[K]) Clone() Handle[K] {
	if !h.Valid() {
		return Handle[K]{}
	}
	o := newOwner(h.o.st.b)
	runtime.KeepAlive(h.o)
	if o == nil {
		return Handle[K]{}
	}
	return Handle[K]{o: o, dir: h.dir}
}

// Drop gives up this handle's ownership and resets it to null. The
// directory entry is left untouched. Dropping a null handle is a no-op.
func (h *Handle[K]) Drop() {
	if h.o != nil {
		h.o.drop()
	}
	h.o = nil
}

// Release removes the resource from its directory when nobody else needs
// the entry, then resets the handle to null.
//
// The entry is erased when force is set or when the directory and this
// handle are the only remaining owners; otherwise the entry stays and
// Release only drops this handle. If the directory no longer maps the name
// to this resource and force is not set, Release returns a *LookupError
// wrapping ErrStaleEntry. Releasing a null handle is a no-op.
func (h *Handle[K]) Release(force bool) error {
	if !h.Valid() {
		h.o = nil
		return nil
	}
	var err error
	if h.dir != nil {
		err = h.dir.releaseEntry(h.o.st.b, force)
	}
	h.Drop()
	return err
}

// String returns "kind(name)" or "kind(null)".
func (h Handle[K]) String() string {
	if !h.Valid() {
		return h.Kind() + "(null)"
	}
	return h.Kind() + "(" + h.o.st.b.name + ")"
}

func (h Handle[K]) mustBeValid() {
	if !h.Valid() {
		panic(&NullHandleError{Kind: h.Kind()})
	}
}

// SameResource reports whether two handles, possibly of different kinds,
// own the same resource.
func SameResource[A, B Resource](a Handle[A], b Handle[B]) bool {
	return a.Valid() && b.Valid() && a.o.st.b == b.o.st.b
}

func kindOf[K any]() string {
	return reflect.TypeFor[K]().String()
}
