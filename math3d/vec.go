// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package math3d provides the float32 vector and matrix types used by
// cameras, geometry and uniform buffers.
//
// Matrices are column-major and follow the WebGPU clip space convention:
// right-handed view space, depth mapped to [0, 1].
package math3d

import "math"

// Vec2 is a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Length returns the length of the vector.
func (v Vec2) Length() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Lerp interpolates linearly between v (t=0) and w (t=1).
func (v Vec2) Lerp(w Vec2, t float32) Vec2 {
	return Vec2{X: v.X + (w.X-v.X)*t, Y: v.Y + (w.Y-v.Y)*t}
}

// Approx reports whether both components are within epsilon of w.
func (v Vec2) Approx(w Vec2, epsilon float32) bool {
	return approx(v.X, w.X, epsilon) && approx(v.Y, w.Y, epsilon)
}

// Vec3 is a 3D vector: positions, directions and normals.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is a convenience function to create a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Splat3 returns a Vec3 with all components set to s.
func Splat3(s float32) Vec3 {
	return Vec3{X: s, Y: s, Z: s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Mul returns the vector scaled by a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// MulVec returns the component-wise product.
func (v Vec3) MulVec(w Vec3) Vec3 {
	return Vec3{X: v.X * w.X, Y: v.Y * w.Y, Z: v.Z * w.Z}
}

// Div returns the vector divided by a scalar.
func (v Vec3) Div(s float32) Vec3 {
	return Vec3{X: v.X / s, Y: v.Y / s, Z: v.Z / s}
}

// Neg returns the negation of the vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Length returns the length of the vector.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSq())))
}

// LengthSq returns the squared length of the vector.
func (v Vec3) LengthSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns a unit vector in the same direction.
// Returns zero vector if the original vector has zero length.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return v.Div(length)
}

// Lerp interpolates linearly between v (t=0) and w (t=1).
func (v Vec3) Lerp(w Vec3, t float32) Vec3 {
	return Vec3{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
		Z: v.Z + (w.Z-v.Z)*t,
	}
}

// Min returns the component-wise minimum.
func (v Vec3) Min(w Vec3) Vec3 {
	return Vec3{X: min(v.X, w.X), Y: min(v.Y, w.Y), Z: min(v.Z, w.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(w Vec3) Vec3 {
	return Vec3{X: max(v.X, w.X), Y: max(v.Y, w.Y), Z: max(v.Z, w.Z)}
}

// MinComponent returns the smallest component.
func (v Vec3) MinComponent() float32 {
	return min(v.X, v.Y, v.Z)
}

// Approx reports whether all components are within epsilon of w.
func (v Vec3) Approx(w Vec3, epsilon float32) bool {
	return approx(v.X, w.X, epsilon) && approx(v.Y, w.Y, epsilon) && approx(v.Z, w.Z, epsilon)
}

// Vec4 returns v extended with w.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

// Rotate rotates v by angle radians around axis (Rodrigues' formula).
// The axis does not need to be normalized.
func (v Vec3) Rotate(angle float32, axis Vec3) Vec3 {
	k := axis.Normalize()
	s, c := math.Sincos(float64(angle))
	sin, cos := float32(s), float32(c)
	return v.Mul(cos).
		Add(k.Cross(v).Mul(sin)).
		Add(k.Mul(k.Dot(v) * (1 - cos)))
}

// Vec4 is a homogeneous 4D vector, also used for RGBA colors.
type Vec4 struct {
	X, Y, Z, W float32
}

// V4 is a convenience function to create a Vec4.
func V4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Vec3 drops the W component.
func (v Vec4) Vec3() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns the sum of two vectors.
func (v Vec4) Add(w Vec4) Vec4 {
	return Vec4{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z, W: v.W + w.W}
}

// Mul returns the vector scaled by a scalar.
func (v Vec4) Mul(s float32) Vec4 {
	return Vec4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

// Lerp interpolates linearly between v (t=0) and w (t=1).
func (v Vec4) Lerp(w Vec4, t float32) Vec4 {
	return v.Mul(1 - t).Add(w.Mul(t))
}

// Approx reports whether all components are within epsilon of w.
func (v Vec4) Approx(w Vec4, epsilon float32) bool {
	return approx(v.X, w.X, epsilon) && approx(v.Y, w.Y, epsilon) &&
		approx(v.Z, w.Z, epsilon) && approx(v.W, w.W, epsilon)
}

// Radians converts degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * (math.Pi / 180)
}

// Fract returns the fractional part of x, x - floor(x).
func Fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

func approx(a, b, epsilon float32) bool {
	d := a - b
	return d <= epsilon && d >= -epsilon
}
