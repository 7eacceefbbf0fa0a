// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres"
	"github.com/gogpu/wgpu/hal"
)

// Buffer errors.
var (
	// ErrInvalidBufferSize is returned when a buffer would be empty.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrBufferDestroyed is returned when writing to a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrWriteOutOfRange is returned when a write exceeds the buffer size.
	ErrWriteOutOfRange = errors.New("gpu: write out of buffer range")
)

// copyBufferAlignment is the alignment of buffer sizes and write offsets.
const copyBufferAlignment uint64 = 4

// Buffer is a GPU buffer created on a Device.
type Buffer struct {
	raw   hal.Buffer
	label string
	size  uint64
	usage gputypes.BufferUsage
}

// Raw returns the HAL buffer, or nil once destroyed.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Label returns the debug label.
func (b *Buffer) Label() string { return b.label }

// Size returns the allocated size in bytes (aligned to 4).
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

func alignSize(n uint64) uint64 {
	return (n + copyBufferAlignment - 1) &^ (copyBufferAlignment - 1)
}

// CreateBuffer creates a buffer of len(data) bytes and uploads data.
// CopyDst is added to usage so the buffer can be updated later.
func (d *Device) CreateBuffer(label string, usage gputypes.BufferUsage, data []byte) (*Buffer, error) {
	return d.createBuffer(label, usage, uint64(len(data)), data)
}

// CreateEmptyBuffer creates a buffer of size bytes without uploading data.
func (d *Device) CreateEmptyBuffer(label string, usage gputypes.BufferUsage, size uint64) (*Buffer, error) {
	return d.createBuffer(label, usage, size, nil)
}

func (d *Device) createBuffer(label string, usage gputypes.BufferUsage, size uint64, data []byte) (*Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: buffer %q is empty", ErrInvalidBufferSize, label)
	}
	if err := d.lock(); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	usage |= gputypes.BufferUsageCopyDst
	aligned := alignSize(size)
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  aligned,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %q: %w", label, err)
	}
	d.stats.Buffers++

	b := &Buffer{raw: raw, label: label, size: aligned, usage: usage}
	if len(data) > 0 {
		if err := d.writeLocked(b, 0, data); err != nil {
			d.device.DestroyBuffer(raw)
			d.stats.Buffers--
			return nil, err
		}
	}
	gres.Logger().Debug("gpu: buffer created", "label", label, "size", aligned)
	return b, nil
}

// WriteBuffer uploads data into b at offset.
func (d *Device) WriteBuffer(b *Buffer, offset uint64, data []byte) error {
	if b == nil || b.raw == nil {
		return ErrBufferDestroyed
	}
	if offset+alignSize(uint64(len(data))) > b.size {
		return fmt.Errorf("%w: %q offset %d + %d > %d", ErrWriteOutOfRange, b.label, offset, len(data), b.size)
	}
	if err := d.lock(); err != nil {
		return err
	}
	defer d.mu.Unlock()
	return d.writeLocked(b, offset, data)
}

// writeLocked pads data to the copy alignment. The caller must hold d.mu.
func (d *Device) writeLocked(b *Buffer, offset uint64, data []byte) error {
	if rem := uint64(len(data)) % copyBufferAlignment; rem != 0 {
		padded := make([]byte, uint64(len(data))+copyBufferAlignment-rem)
		copy(padded, data)
		data = padded
	}
	if err := d.queue.WriteBuffer(b.raw, offset, data); err != nil {
		return fmt.Errorf("gpu: write buffer %q: %w", b.label, err)
	}
	d.stats.BytesWritten += uint64(len(data))
	return nil
}

// DestroyBuffer frees b. It is safe to call with nil or twice.
func (d *Device) DestroyBuffer(b *Buffer) {
	if d == nil || b == nil || b.raw == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed || d.external {
		d.device.DestroyBuffer(b.raw)
	}
	b.raw = nil
	d.stats.Buffers--
}
