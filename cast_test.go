// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gres

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

// shape is an interface kind implemented by circle and square.
type shape interface {
	Resource
	Area() float64
}

type circle struct {
	name      string
	r         float64
	destroyed *atomic.Int32
}

func (c *circle) Name() string  { return c.name }
func (c *circle) Area() float64 { return math.Pi * c.r * c.r }
func (c *circle) Destroy() {
	if c.destroyed != nil {
		c.destroyed.Add(1)
	}
}

type square struct {
	name string
	side float64
}

func (s *square) Name() string  { return s.name }
func (s *square) Area() float64 { return s.side * s.side }

func TestCastRoundTrip(t *testing.T) {
	var destroyed atomic.Int32
	shapes := NewRegistry[shape]("shape")

	h, err := shapes.Adopt(&circle{name: "disc", r: 1, destroyed: &destroyed})
	if err != nil {
		t.Fatal(err)
	}

	down := Cast[*circle](h)
	if !SameResource(h, down) {
		t.Fatal("downcast does not share the resource")
	}
	if got := h.Owners(); got != 3 {
		t.Errorf("Owners() = %d after cast, want 3", got)
	}

	down.Get().r = 2
	if got, want := h.Get().Area(), 4*math.Pi; math.Abs(got-want) > 1e-12 {
		t.Errorf("Area() through interface handle = %v, want %v", got, want)
	}

	up := Cast[shape](down)
	if !up.Same(h) {
		t.Error("upcast does not return to the same resource")
	}
	if got := up.Kind(); got != "shape" {
		t.Errorf("cast handle Kind() = %q, want shape (source directory)", got)
	}

	h.Drop()
	down.Drop()
	up.Drop()
	if destroyed.Load() != 0 {
		t.Fatal("destroyed while still registered")
	}
	shapes.Erase("disc")
	if got := destroyed.Load(); got != 1 {
		t.Errorf("destroyed = %d, want exactly 1", got)
	}
}

func TestCastKindMismatchPanics(t *testing.T) {
	shapes := NewRegistry[shape]("shape")
	h, err := shapes.Adopt(&circle{name: "disc", r: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Drop()

	if IsKind[*square](h) {
		t.Error("IsKind[*square] = true for a circle")
	}
	if !IsKind[*circle](h) {
		t.Error("IsKind[*circle] = false for a circle")
	}
	if !IsKind[interface{ Area() float64 }](h) {
		t.Error("IsKind on a satisfied capability interface = false")
	}

	before := h.Owners()
	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrKindMismatch) {
				t.Fatalf("recovered %v, want ErrKindMismatch", r)
			}
			var km *KindMismatchError
			if !errors.As(err, &km) {
				t.Fatalf("panic value %T is not *KindMismatchError", r)
			}
			if km.Name != "disc" || km.From != "shape" || km.Actual != "*gres.circle" {
				t.Errorf("KindMismatchError = %+v", km)
			}
		}()
		Cast[*square](h)
		t.Fatal("Cast to an incompatible kind did not panic")
	}()
	if got := h.Owners(); got != before {
		t.Errorf("failed cast changed owner count %d -> %d", before, got)
	}
}

func TestCastNullHandle(t *testing.T) {
	var h Handle[shape]
	if Cast[*circle](h).Valid() {
		t.Error("cast of a null handle is valid")
	}
	if IsKind[*circle](h) {
		t.Error("IsKind on a null handle = true")
	}
}

func TestReleaseThroughCastHandle(t *testing.T) {
	shapes := NewRegistry[shape]("shape")
	h, err := shapes.Adopt(&square{name: "sq", side: 2})
	if err != nil {
		t.Fatal(err)
	}
	sq := Cast[*square](h)
	h.Drop()

	if err := sq.Release(false); err != nil {
		t.Fatalf("Release() = %v", err)
	}
	if shapes.Exists("sq") {
		t.Error("release through a cast handle kept the source entry")
	}
}

func TestTransfer(t *testing.T) {
	var destroyed atomic.Int32
	shapes := NewRegistry[shape]("shape")
	circles := NewRegistry[*circle]("circle")

	h, err := shapes.Adopt(&circle{name: "disc", r: 1, destroyed: &destroyed})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Drop()

	moved, err := Transfer(h, circles)
	if err != nil {
		t.Fatalf("Transfer() = %v", err)
	}
	defer moved.Drop()

	if shapes.Exists("disc") {
		t.Error("source entry survived Transfer")
	}
	if !circles.Exists("disc") {
		t.Error("target registry has no entry after Transfer")
	}
	if !SameResource(h, moved) {
		t.Error("Transfer changed resource identity")
	}
	if got := moved.Kind(); got != "circle" {
		t.Errorf("moved Kind() = %q, want circle", got)
	}
	if destroyed.Load() != 0 {
		t.Error("Transfer destroyed the resource")
	}
}

func TestTransferErrors(t *testing.T) {
	shapes := NewRegistry[shape]("shape")
	squares := NewRegistry[*square]("square")

	h, err := shapes.Adopt(&circle{name: "disc", r: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Drop()

	if _, err := Transfer(h, squares); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Transfer(circle -> square) = %v, want ErrKindMismatch", err)
	}
	if !shapes.Exists("disc") {
		t.Error("failed Transfer removed the source entry")
	}

	var null Handle[shape]
	if _, err := Transfer(null, squares); !errors.Is(err, ErrNullHandle) {
		t.Errorf("Transfer(null) = %v, want ErrNullHandle", err)
	}

	squares.Shutdown()
	sq, err := shapes.Adopt(&square{name: "sq", side: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer sq.Drop()
	if _, err := Transfer(sq, squares); !errors.Is(err, ErrClosed) {
		t.Errorf("Transfer into closed registry = %v, want ErrClosed", err)
	}
	if !shapes.Exists("sq") {
		t.Error("Transfer into a closed registry removed the source entry")
	}
}
