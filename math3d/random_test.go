// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package math3d

import (
	"errors"
	"slices"
	"testing"
)

func TestSamplerReproducible(t *testing.T) {
	a, b := NewSampler(7), NewSampler(7)
	for range 16 {
		if x, y := a.Float(0, 1), b.Float(0, 1); x != y {
			t.Fatalf("same seed diverged: %v != %v", x, y)
		}
	}
}

func TestSamplerRanges(t *testing.T) {
	s := NewSampler(1)
	for range 1000 {
		if f := s.Float(-2, 3); f < -2 || f >= 3 {
			t.Fatalf("Float(-2, 3) = %v", f)
		}
		if n := s.Int(4, 6); n < 4 || n > 6 {
			t.Fatalf("Int(4, 6) = %d", n)
		}
		if p := s.InBall(2); p.Length() > 2+1e-5 {
			t.Fatalf("InBall(2) = %v, length %v", p, p.Length())
		}
		if p := s.OnSphere(3); !approx(p.Length(), 3, 1e-4) {
			t.Fatalf("OnSphere(3) = %v, length %v", p, p.Length())
		}
		if p := s.InDisk(1); p.Length() > 1+1e-5 {
			t.Fatalf("InDisk(1) = %v", p)
		}
	}
	if !s.Bool(1) || s.Bool(0) {
		t.Error("Bool(1) must be true and Bool(0) false")
	}
}

func TestUniqueIndices(t *testing.T) {
	s := NewSampler(3)
	idx, err := s.UniqueIndices(5, 8)
	if err != nil {
		t.Fatal(err)
	}
	sorted := slices.Sorted(slices.Values(idx))
	if len(slices.Compact(sorted)) != 5 {
		t.Errorf("UniqueIndices(5, 8) = %v has duplicates", idx)
	}
	for _, i := range idx {
		if i < 0 || i >= 8 {
			t.Errorf("index %d out of [0, 8)", i)
		}
	}
	if _, err := s.UniqueIndices(9, 8); !errors.Is(err, ErrSampleCount) {
		t.Errorf("UniqueIndices(9, 8) = %v, want ErrSampleCount", err)
	}
}
