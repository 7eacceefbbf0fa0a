// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Constructor builds a new resource of kind K named name.
// Consumer packages close over their own construction arguments.
type Constructor[K Resource] func(name string) (K, error)

// Registry is the directory of one resource kind: a mapping from name to
// the resource registered under it. Each registered resource counts the
// directory entry as one extra owner, so a resource stays alive while it is
// registered even if no handle refers to it.
//
// All directory operations are serialized by one lock per registry.
// Registries of different kinds are fully independent.
//
// Example:
//
//	cameras := gres.NewRegistry[*camera.Camera]("camera")
//	defer cameras.Shutdown()
//
//	cam, err := cameras.Construct("main", camera.Constructor())
//	...
//	again, err := cameras.Alias("main") // shares ownership with cam
type Registry[K Resource] struct {
	kind   string
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*block
	closed  bool
}

// NewRegistry creates an empty registry for kind K. The kind string is used
// in errors and log records; if empty, the Go type name of K is used.
func NewRegistry[K Resource](kind string, opts ...Option) *Registry[K] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if kind == "" {
		kind = kindOf[K]()
	}
	return &Registry[K]{
		kind:    kind,
		logger:  o.logger,
		entries: make(map[string]*block, o.capacity),
	}
}

// Kind returns the kind name of the registry.
func (r *Registry[K]) Kind() string { return r.kind }

func (r *Registry[K]) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Construct builds a resource with ctor, registers it under name and
// returns a handle owning it.
//
// If name is already registered the previous entry is replaced and a
// warning is logged; the previous resource lives on only while other
// handles still own it. The resource built by ctor must report name from
// its Name method, otherwise it is destroyed and ErrNameMismatch returned.
func (r *Registry[K]) Construct(name string, ctor Constructor[K]) (Handle[K], error) {
	if ctor == nil {
		return Handle[K]{}, fmt.Errorf("gres: construct %s %q: nil constructor", r.kind, name)
	}
	res, err := ctor(name)
	if err != nil {
		return Handle[K]{}, fmt.Errorf("gres: construct %s %q: %w", r.kind, name, err)
	}
	if isNil(res) {
		return Handle[K]{}, fmt.Errorf("gres: construct %s %q: %w", r.kind, name, ErrNilResource)
	}
	if got := res.Name(); got != name {
		if d, ok := any(res).(Destroyer); ok {
			d.Destroy()
		}
		return Handle[K]{}, fmt.Errorf("gres: construct %s %q: %w (got %q)", r.kind, name, ErrNameMismatch, got)
	}
	return r.register(res)
}

// Adopt registers an already constructed resource under its own name and
// returns a handle owning it. The resource must not be owned by any other
// handle. Ownership passes to the registry even when Adopt fails, in which
// case the resource is destroyed.
func (r *Registry[K]) Adopt(res K) (Handle[K], error) {
	if isNil(res) {
		return Handle[K]{}, fmt.Errorf("gres: adopt %s: %w", r.kind, ErrNilResource)
	}
	return r.register(res)
}

func (r *Registry[K]) register(res K) (Handle[K], error) {
	b := newBlock(res)
	// The handle owns the block before the entry is published, so a
	// concurrent Erase cannot destroy it under our feet.
	h := Handle[K]{o: firstOwner(b), dir: r}
	if err := r.insert(b); err != nil {
		h.Drop()
		return Handle[K]{}, err
	}
	return h, nil
}

// insert publishes b under its name, replacing any previous entry.
func (r *Registry[K]) insert(b *block) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("gres: register %s %q: %w", r.kind, b.name, ErrClosed)
	}
	b.retain() // the caller owns b, so the count is above zero
	old, dup := r.entries[b.name]
	r.entries[b.name] = b
	r.mu.Unlock()

	if dup {
		r.log().Warn("gres: name is not unique, replacing entry", "kind", r.kind, "name", b.name)
		old.release()
		return nil
	}
	r.log().Debug("gres: registered", "kind", r.kind, "name", b.name)
	return nil
}

// Alias returns a new handle sharing ownership of the resource registered
// under name. It returns a *LookupError wrapping ErrNotFound if the name is
// not registered.
func (r *Registry[K]) Alias(name string) (Handle[K], error) {
	r.mu.RLock()
	b, ok := r.entries[name]
	var h Handle[K]
	if ok {
		h = Handle[K]{o: newOwner(b), dir: r}
	}
	r.mu.RUnlock()

	if !ok {
		return Handle[K]{}, &LookupError{Op: "alias", Kind: r.kind, Name: name, Err: ErrNotFound}
	}
	return h, nil
}

// MustAlias is like Alias but panics with the *LookupError on a miss.
// It is meant for lookups whose absence is a programming error.
func (r *Registry[K]) MustAlias(name string) Handle[K] {
	h, err := r.Alias(name)
	if err != nil {
		panic(err)
	}
	return h
}

// Exists reports whether a resource is registered under name.
func (r *Registry[K]) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Owners returns the owner count of the resource registered under name,
// or 0 if none is registered.
func (r *Registry[K]) Owners(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.entries[name]; ok {
		return b.refs.Load()
	}
	return 0
}

// Erase removes the entry for name. It is a no-op if name is not registered.
// The resource is destroyed if the entry was its last owner.
func (r *Registry[K]) Erase(name string) {
	r.mu.Lock()
	b, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
	}
	r.mu.Unlock()

	if ok {
		r.log().Debug("gres: erased", "kind", r.kind, "name", name)
		b.release()
	}
}

// Clear drops all entries. Resources whose only remaining owner was the
// directory are destroyed; resources still owned by handles survive.
func (r *Registry[K]) Clear() {
	r.mu.Lock()
	old := r.entries
	r.entries = make(map[string]*block)
	r.mu.Unlock()

	r.releaseAll(old)
}

// Shutdown clears the registry and rejects further registrations with
// ErrClosed. It is meant to be called at teardown, before the state the
// resources depend on (GPU device, other registries) goes away.
func (r *Registry[K]) Shutdown() {
	r.mu.Lock()
	old := r.entries
	r.entries = make(map[string]*block)
	r.closed = true
	r.mu.Unlock()

	r.releaseAll(old)
	r.log().Debug("gres: registry shut down", "kind", r.kind, "released", len(old))
}

func (r *Registry[K]) releaseAll(entries map[string]*block) {
	// Sorted so that teardown order is reproducible.
	for _, name := range slices.Sorted(maps.Keys(entries)) {
		entries[name].release()
	}
}

// Len returns the number of registered resources.
func (r *Registry[K]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns a sorted snapshot of the registered names.
func (r *Registry[K]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.entries))
}

// Glob returns the sorted registered names matching a doublestar pattern
// ("mesh_*", "textures/**/*.png", "{main,debug}_cam").
func (r *Registry[K]) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("gres: glob %s %q: %w", r.kind, pattern, doublestar.ErrBadPattern)
	}
	var matched []string
	for _, name := range r.Names() {
		if ok, _ := doublestar.Match(pattern, name); ok {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// All iterates over a snapshot of the registered resources in name order.
//
// The snapshot is taken under the read lock, which is released before the
// first value is yielded, so the loop body may use the registry freely,
// including registering and erasing entries. Every snapshot resource stays
// alive until the loop has moved past it, even if its entry is erased
// meanwhile, in which case it is destroyed by the loop. Entries registered
// during the loop are not visited.
func (r *Registry[K]) All() iter.Seq2[string, K] {
	return func(yield func(string, K) bool) {
		snap := r.snapshot()
		next := 0
		defer func() {
			for _, b := range snap[next:] {
				b.release()
			}
		}()
		for next < len(snap) {
			b := snap[next]
			ok := yield(b.name, b.value.(K))
			next++
			b.release()
			if !ok {
				return
			}
		}
	}
}

// snapshot returns the registered blocks in name order, each retained once.
func (r *Registry[K]) snapshot() []*block {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := make([]*block, 0, len(r.entries))
	for _, name := range slices.Sorted(maps.Keys(r.entries)) {
		if b := r.entries[name]; b.retain() {
			snap = append(snap, b)
		}
	}
	return snap
}

// releaseEntry implements the Release policy for a handle owning b.
func (r *Registry[K]) releaseEntry(b *block, force bool) error {
	r.mu.Lock()
	cur, ok := r.entries[b.name]
	registered := ok && cur == b
	erase := registered && (force || onlyDirectoryRemains(b))
	if erase {
		delete(r.entries, b.name)
	}
	r.mu.Unlock()

	switch {
	case erase:
		r.log().Debug("gres: released", "kind", r.kind, "name", b.name, "forced", force)
		b.release()
	case !registered && !force:
		return &LookupError{Op: "release", Kind: r.kind, Name: b.name, Err: ErrStaleEntry}
	}
	return nil
}

// eraseEntry removes the entry for b's name only if it still maps to b.
func (r *Registry[K]) eraseEntry(b *block) {
	r.mu.Lock()
	cur, ok := r.entries[b.name]
	erase := ok && cur == b
	if erase {
		delete(r.entries, b.name)
	}
	r.mu.Unlock()

	if erase {
		b.release()
	}
}

// onlyDirectoryRemains reports whether the releasing handle and the
// directory entry are the only owners of b.
func onlyDirectoryRemains(b *block) bool {
	return b.refs.Load() <= 2
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
