// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu is the device plumbing shared by the GPU-backed resource
// kinds (meshes, textures, shaders, uniform buffers).
//
// A Device wraps a gogpu/wgpu HAL device and queue. It is either opened by
// this package (NewHeadless, Open) or borrowed from a host application
// through a gpucontext.DeviceProvider (FromProvider). Resource kinds never
// touch HAL objects directly; they go through Device so that every GPU
// object is accounted for in Stats and destroyed against the right device.
package gpu

import (
	"cmp"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Device errors.
var (
	// ErrNoAdapter is returned when a backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrBackendUnavailable is returned by Open for a backend that is not
	// compiled into the program.
	ErrBackendUnavailable = errors.New("gpu: backend not available")

	// ErrNotHAL is returned by FromProvider when the provider does not
	// expose its HAL device and queue.
	ErrNotHAL = errors.New("gpu: provider does not expose HAL types")

	// ErrClosed is returned when using a device after Close.
	ErrClosed = errors.New("gpu: device is closed")

	// ErrNilDevice is returned by helpers that received a nil *Device.
	ErrNilDevice = errors.New("gpu: device is nil")
)

// Stats counts the GPU objects currently alive on a Device.
type Stats struct {
	Buffers       int
	Textures      int
	ShaderModules int
	// BytesWritten is the total number of bytes uploaded through the queue.
	BytesWritten uint64
}

// Device owns (or borrows) one HAL device and its queue.
//
// Device is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance // nil when borrowed
	external bool
	format   gputypes.TextureFormat
	adapter  string

	stats  Stats
	closed bool
}

// NewHeadless opens a device on the noop HAL backend. Every GPU call
// succeeds without touching hardware, which makes it suitable for tools,
// CI and tests.
func NewHeadless() (*Device, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create noop instance: %w", err)
	}
	return openInstance(instance)
}

// Open creates a standalone device on the given backend. The backend must
// be linked into the program (for example by importing
// github.com/gogpu/wgpu/hal/vulkan). Discrete and integrated GPUs are
// preferred over software adapters.
func Open(backend gputypes.Backend) (*Device, error) {
	api, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, backend)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	return openInstance(instance)
}

func openInstance(instance hal.Instance) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}

	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	d := &Device{
		device:   openDev.Device,
		queue:    openDev.Queue,
		instance: instance,
		format:   gputypes.TextureFormatBGRA8Unorm,
		adapter:  selected.Info.Name,
	}
	gres.Logger().Info("gpu: device opened", "adapter", d.adapter)
	return d, nil
}

// FromProvider borrows the device of a host application. The provider must
// additionally implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. Close on a borrowed device releases nothing the
// host owns.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHAL)
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	return &Device{
		device:   device,
		queue:    queue,
		external: true,
		format:   format,
		adapter:  cmp.Or(provider.AdapterInfo().Name, "external"),
	}, nil
}

// SurfaceFormat returns the preferred color format for render targets.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// AdapterName returns the name of the adapter the device was opened on.
func (d *Device) AdapterName() string { return d.adapter }

// External reports whether the device is borrowed from a provider.
func (d *Device) External() bool { return d.external }

// HAL returns the underlying HAL device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Stats returns a snapshot of the live GPU object counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close destroys the device if it was opened by this package. Resources
// created on the device must be destroyed first; leftovers are reported
// as a warning. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	leaked := d.stats
	d.mu.Unlock()

	if leaked.Buffers+leaked.Textures+leaked.ShaderModules > 0 {
		gres.Logger().Warn("gpu: closing device with live objects",
			"buffers", leaked.Buffers, "textures", leaked.Textures, "shaders", leaked.ShaderModules)
	}
	if d.external {
		return
	}
	d.device.Destroy()
	if d.instance != nil {
		d.instance.Destroy()
	}
	gres.Logger().Info("gpu: device closed", "adapter", d.adapter)
}

// lock acquires d.mu if d is usable. On success the caller must unlock.
func (d *Device) lock() error {
	if d == nil {
		return ErrNilDevice
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	return nil
}
