// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package anim provides the Animation resource kind: a looping camera path
// with named data tracks sampled along it.
//
// Time is measured in nodes: at time 2.5 the animation is halfway between
// node 2 and node 3. The last node blends back into the first.
package anim

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/camera"
	"github.com/gogpu/gres/math3d"
)

// Kind is the registry kind name of animations.
const Kind = "anim"

// DefaultNodeInterval is the time between two path nodes.
const DefaultNodeInterval = time.Second

var (
	// ErrNoTrack is returned when a named data track does not exist or is empty.
	ErrNoTrack = errors.New("anim: no such data track")

	// ErrTrackType is returned when a track value has an unexpected type.
	ErrTrackType = errors.New("anim: track value type mismatch")

	// ErrIndexOutOfRange is returned by Put operations past the end.
	ErrIndexOutOfRange = errors.New("anim: index out of range")
)

type (
	// Handle is a shared handle to a registered Animation.
	Handle = gres.Handle[*Animation]
	// Registry is the directory of animations.
	Registry = gres.Registry[*Animation]
)

// NewRegistry creates an empty animation registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Animation](Kind, opts...)
}

// Node is one camera path node.
type Node struct {
	Pos    math3d.Vec3
	LookAt math3d.Vec3
}

// Animation is a camera path plus data tracks. It is safe for concurrent
// use.
type Animation struct {
	name string

	mu       sync.RWMutex
	time     float32
	interval time.Duration
	running  bool
	path     []Node
	tracks   map[string][]any
}

// New returns an empty, stopped animation.
func New(name string) *Animation {
	return &Animation{
		name:     name,
		interval: DefaultNodeInterval,
		tracks:   make(map[string][]any),
	}
}

// Constructor returns a registry constructor for an animation over nodes.
func Constructor(interval time.Duration, nodes ...Node) gres.Constructor[*Animation] {
	return func(name string) (*Animation, error) {
		a := New(name)
		if interval > 0 {
			a.interval = interval
		}
		a.path = slices.Clone(nodes)
		return a, nil
	}
}

// Name returns the animation name.
func (a *Animation) Name() string { return a.name }

// Update advances a running animation by dt and points cam along the path.
// Time wraps around at the end of the path. A nil cam only advances time.
func (a *Animation) Update(dt time.Duration, cam *camera.Camera) {
	a.mu.Lock()
	if !a.running || len(a.path) == 0 || a.interval <= 0 {
		a.mu.Unlock()
		return
	}
	a.time += float32(dt) / float32(a.interval)
	if n := float32(len(a.path)); a.time >= n {
		a.time = float32(math.Mod(float64(a.time), float64(n)))
	}
	pos, lookAt := a.evalNode()
	a.mu.Unlock()

	if cam != nil {
		cam.Pos = pos
		cam.Dir = lookAt.Sub(pos).Normalize()
		cam.Update()
	}
}

// Play starts or resumes the animation.
func (a *Animation) Play() {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
}

// Pause halts the animation at its current time.
func (a *Animation) Pause() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

// Stop halts the animation and rewinds it.
func (a *Animation) Stop() {
	a.mu.Lock()
	a.running = false
	a.time = 0
	a.mu.Unlock()
}

// Reset rewinds the animation without changing whether it runs.
func (a *Animation) Reset() {
	a.mu.Lock()
	a.time = 0
	a.mu.Unlock()
}

// Clear removes all nodes and data tracks and rewinds.
func (a *Animation) Clear() {
	a.mu.Lock()
	a.path = nil
	clear(a.tracks)
	a.time = 0
	a.mu.Unlock()
}

// Running reports whether the animation is playing.
func (a *Animation) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Time returns the current position on the path, in nodes.
func (a *Animation) Time() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.time
}

// SetTime moves to position t, in nodes. Negative values clamp to zero.
func (a *Animation) SetTime(t float32) {
	a.mu.Lock()
	a.time = max(t, 0)
	a.mu.Unlock()
}

// NodeInterval returns the duration between two nodes.
func (a *Animation) NodeInterval() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.interval
}

// SetNodeInterval sets the duration between two nodes. Non-positive
// values are ignored.
func (a *Animation) SetNodeInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	a.mu.Lock()
	a.interval = d
	a.mu.Unlock()
}

// Len returns the number of path nodes.
func (a *Animation) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.path)
}

// Nodes returns a copy of the camera path.
func (a *Animation) Nodes() []Node {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.path)
}

// PushNode appends a path node and returns its index.
func (a *Animation) PushNode(pos, lookAt math3d.Vec3) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.path = append(a.path, Node{Pos: pos, LookAt: lookAt})
	return len(a.path) - 1
}

// PutNode replaces node i. Putting at Len appends.
func (a *Animation) PutNode(i int, pos, lookAt math3d.Vec3) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case i < 0 || i > len(a.path):
		return fmt.Errorf("anim %q: put node %d of %d: %w", a.name, i, len(a.path), ErrIndexOutOfRange)
	case i == len(a.path):
		a.path = append(a.path, Node{Pos: pos, LookAt: lookAt})
	default:
		a.path[i] = Node{Pos: pos, LookAt: lookAt}
	}
	return nil
}

// PushData appends v to the named track, creating it, and returns its index.
func (a *Animation) PushData(track string, v any) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracks[track] = append(a.tracks[track], v)
	return len(a.tracks[track]) - 1
}

// PutData replaces entry i of the named track. Putting at the track
// length appends.
func (a *Animation) PutData(i int, track string, v any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	data := a.tracks[track]
	switch {
	case i < 0 || i > len(data):
		return fmt.Errorf("anim %q: put %s[%d] of %d: %w", a.name, track, i, len(data), ErrIndexOutOfRange)
	case i == len(data):
		a.tracks[track] = append(data, v)
	default:
		data[i] = v
	}
	return nil
}

// Tracks returns the sorted track names.
func (a *Animation) Tracks() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.tracks))
}

// EvalPos returns the interpolated camera position at the current time.
func (a *Animation) EvalPos() math3d.Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pos, _ := a.evalNode()
	return pos
}

// EvalLookAt returns the interpolated look-at point at the current time.
func (a *Animation) EvalLookAt() math3d.Vec3 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, lookAt := a.evalNode()
	return lookAt
}

// evalNode must be called with a.mu held.
func (a *Animation) evalNode() (pos, lookAt math3d.Vec3) {
	if len(a.path) == 0 {
		return pos, lookAt
	}
	lo, hi, f := span(a.time, len(a.path))
	return a.path[lo].Pos.Lerp(a.path[hi].Pos, f),
		a.path[lo].LookAt.Lerp(a.path[hi].LookAt, f)
}

// span returns the two wrapped indices around t and the blend factor.
func span(t float32, n int) (lo, hi int, f float32) {
	i := int(t)
	return min(i, n) % n, min(i+1, n) % n, math3d.Fract(t)
}

// EvalFloat returns the named float32 track interpolated at the current time.
func (a *Animation) EvalFloat(track string) (float32, error) {
	return eval(a, track, func(x, y, f float32) float32 { return (1-f)*x + f*y })
}

// EvalVec3 returns the named Vec3 track interpolated at the current time.
func (a *Animation) EvalVec3(track string) (math3d.Vec3, error) {
	return eval(a, track, math3d.Vec3.Lerp)
}

// EvalVec4 returns the named Vec4 track interpolated at the current time.
func (a *Animation) EvalVec4(track string) (math3d.Vec4, error) {
	return eval(a, track, math3d.Vec4.Lerp)
}

func eval[T any](a *Animation, track string, lerp func(T, T, float32) T) (T, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var zero T
	data := a.tracks[track]
	if len(data) == 0 {
		return zero, fmt.Errorf("anim %q: %s: %w", a.name, track, ErrNoTrack)
	}
	lo, hi, f := span(a.time, len(data))
	x, ok := data[lo].(T)
	if !ok {
		return zero, trackTypeError[T](a.name, track, lo, data[lo])
	}
	y, ok := data[hi].(T)
	if !ok {
		return zero, trackTypeError[T](a.name, track, hi, data[hi])
	}
	return lerp(x, y, f), nil
}

// Lookup returns the entry of the named track at the current node without
// interpolation. Past the end of the track the last entry is returned.
func Lookup[T any](a *Animation, track string) (T, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var zero T
	data := a.tracks[track]
	if len(data) == 0 {
		return zero, fmt.Errorf("anim %q: %s: %w", a.name, track, ErrNoTrack)
	}
	i := min(int(a.time), len(data)-1)
	v, ok := data[i].(T)
	if !ok {
		return zero, trackTypeError[T](a.name, track, i, data[i])
	}
	return v, nil
}

func trackTypeError[T any](name, track string, i int, v any) error {
	return fmt.Errorf("anim %q: %s[%d] is %T, want %v: %w", name, track, i, v, reflect.TypeFor[T](), ErrTrackType)
}
