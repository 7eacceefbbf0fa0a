// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package math3d

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrSampleCount is returned by UniqueIndices when more samples are
// requested than indices exist.
var ErrSampleCount = errors.New("math3d: sample count exceeds index range")

// Sampler draws random scalars and points. A Sampler is not safe for
// concurrent use; give each goroutine its own.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler with a reproducible sequence for seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Bool returns true with probability p.
func (s *Sampler) Bool(p float64) bool {
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// Float returns a uniform value in [lo, hi).
func (s *Sampler) Float(lo, hi float32) float32 {
	return lo + s.rng.Float32()*(hi-lo)
}

// Int returns a uniform value in [lo, hi], both inclusive.
func (s *Sampler) Int(lo, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}

// Gauss returns a normally distributed value.
func (s *Sampler) Gauss(mean, stddev float64) float64 {
	return mean + s.rng.NormFloat64()*stddev
}

// UniqueIndices returns n distinct indices in [0, size).
func (s *Sampler) UniqueIndices(n, size int) ([]int, error) {
	if n < 0 || n > size {
		return nil, fmt.Errorf("%w: %d of %d", ErrSampleCount, n, size)
	}
	return s.rng.Perm(size)[:n], nil
}

// Vec3 returns a point uniform in the box [lo, hi).
func (s *Sampler) Vec3(lo, hi Vec3) Vec3 {
	return V3(s.Float(lo.X, hi.X), s.Float(lo.Y, hi.Y), s.Float(lo.Z, hi.Z))
}

// InBall returns a point uniform inside the ball of the given radius.
func (s *Sampler) InBall(radius float32) Vec3 {
	for {
		v := s.Vec3(Splat3(-radius), Splat3(radius))
		if v.LengthSq() <= radius*radius {
			return v
		}
	}
}

// OnSphere returns a point uniform on the sphere of the given radius.
func (s *Sampler) OnSphere(radius float32) Vec3 {
	z := s.Float(-1, 1)
	a := float64(s.Float(0, 2*math.Pi))
	r := float32(math.Sqrt(float64(1 - z*z)))
	return V3(r*float32(math.Cos(a)), r*float32(math.Sin(a)), z).Mul(radius)
}

// InDisk returns a point uniform inside the disk of the given radius.
func (s *Sampler) InDisk(radius float32) Vec2 {
	for {
		v := V2(s.Float(-radius, radius), s.Float(-radius, radius))
		if v.Length() <= radius {
			return v
		}
	}
}
