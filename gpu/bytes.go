// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gres/math3d"
)

// Float32Bytes packs values little-endian, the layout of WGSL f32 arrays.
func Float32Bytes(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Uint32Bytes packs values little-endian.
func Uint32Bytes(values []uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// Vec3Bytes packs tightly as float32x3 vertex data.
func Vec3Bytes(values []math3d.Vec3) []byte {
	out := make([]byte, 0, 12*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.X))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Y))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Z))
	}
	return out
}

// Vec2Bytes packs tightly as float32x2 vertex data.
func Vec2Bytes(values []math3d.Vec2) []byte {
	out := make([]byte, 0, 8*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.X))
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v.Y))
	}
	return out
}

// Mat4Bytes packs a column-major matrix as WGSL mat4x4<f32>.
func Mat4Bytes(m math3d.Mat4) []byte {
	return Float32Bytes(m[:])
}
