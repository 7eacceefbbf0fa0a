// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/gres/math3d"
	"github.com/gogpu/wgpu/hal"
)

const testVertexWGSL = `
@vertex
fn vs_main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(pos, 1.0);
}
`

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d, err := NewHeadless()
	if err != nil {
		t.Fatalf("NewHeadless() = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestNewHeadless(t *testing.T) {
	d := newTestDevice(t)
	dev, queue := d.HAL()
	if dev == nil || queue == nil {
		t.Fatal("headless device has nil HAL objects")
	}
	if d.External() {
		t.Error("headless device reported as external")
	}
	if d.SurfaceFormat() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat() = %v", d.SurfaceFormat())
	}
}

func TestBufferLifecycle(t *testing.T) {
	d := newTestDevice(t)

	data := Float32Bytes([]float32{1, 2, 3})
	b, err := d.CreateBuffer("positions", gputypes.BufferUsageVertex, data)
	if err != nil {
		t.Fatalf("CreateBuffer() = %v", err)
	}
	if b.Size() != 12 {
		t.Errorf("Size() = %d, want 12", b.Size())
	}
	if b.Usage()&gputypes.BufferUsageCopyDst == 0 {
		t.Error("CopyDst not added to usage")
	}
	if got := d.Stats(); got.Buffers != 1 || got.BytesWritten != 12 {
		t.Errorf("Stats() = %+v", got)
	}

	if err := d.WriteBuffer(b, 4, Float32Bytes([]float32{9, 9})); err != nil {
		t.Errorf("WriteBuffer() = %v", err)
	}
	if err := d.WriteBuffer(b, 8, Float32Bytes([]float32{9, 9})); !errors.Is(err, ErrWriteOutOfRange) {
		t.Errorf("WriteBuffer(out of range) = %v, want ErrWriteOutOfRange", err)
	}

	d.DestroyBuffer(b)
	d.DestroyBuffer(b) // second call is a no-op
	if b.Raw() != nil {
		t.Error("Raw() not cleared after destroy")
	}
	if got := d.Stats().Buffers; got != 0 {
		t.Errorf("Stats().Buffers = %d after destroy, want 0", got)
	}
	if err := d.WriteBuffer(b, 0, []byte{1, 2, 3, 4}); !errors.Is(err, ErrBufferDestroyed) {
		t.Errorf("WriteBuffer(destroyed) = %v, want ErrBufferDestroyed", err)
	}
}

func TestBufferSizeAlignment(t *testing.T) {
	d := newTestDevice(t)

	b, err := d.CreateBuffer("odd", gputypes.BufferUsageUniform, []byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	defer d.DestroyBuffer(b)
	if b.Size() != 8 {
		t.Errorf("Size() = %d, want 8", b.Size())
	}

	if _, err := d.CreateBuffer("empty", gputypes.BufferUsageVertex, nil); !errors.Is(err, ErrInvalidBufferSize) {
		t.Errorf("CreateBuffer(empty) = %v, want ErrInvalidBufferSize", err)
	}

	e, err := d.CreateEmptyBuffer("uniforms", gputypes.BufferUsageUniform, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer d.DestroyBuffer(e)
	if d.Stats().BytesWritten != 8 {
		t.Errorf("CreateEmptyBuffer uploaded data, BytesWritten = %d", d.Stats().BytesWritten)
	}
}

func TestCreateTexture2D(t *testing.T) {
	d := newTestDevice(t)

	tests := []struct {
		name    string
		w, h    uint32
		format  gputypes.TextureFormat
		pixels  []byte
		wantErr error
	}{
		{"rgba", 2, 2, gputypes.TextureFormatRGBA8Unorm, make([]byte, 16), nil},
		{"bgra uninitialized", 4, 1, gputypes.TextureFormatBGRA8Unorm, nil, nil},
		{"zero size", 0, 2, gputypes.TextureFormatRGBA8Unorm, nil, ErrInvalidTextureSize},
		{"short data", 2, 2, gputypes.TextureFormatRGBA8Unorm, make([]byte, 15), ErrInvalidTextureSize},
		{"unsupported", 2, 2, gputypes.TextureFormatDepth24PlusStencil8, nil, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := d.CreateTexture2D(tt.name, tt.w, tt.h, tt.format, tt.pixels)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateTexture2D() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTexture2D() = %v", err)
			}
			if tex.View() == nil {
				t.Error("texture has no view")
			}
			if w, h := tex.Size(); w != tt.w || h != tt.h {
				t.Errorf("Size() = %dx%d", w, h)
			}
			d.DestroyTexture(tex)
			d.DestroyTexture(tex)
		})
	}
	if got := d.Stats().Textures; got != 0 {
		t.Errorf("Stats().Textures = %d, want 0", got)
	}
}

func TestShaderModule(t *testing.T) {
	d := newTestDevice(t)

	spirv, err := CompileWGSL(testVertexWGSL)
	if err != nil {
		t.Fatalf("CompileWGSL() = %v", err)
	}
	if len(spirv) == 0 || spirv[0] != 0x07230203 {
		t.Fatalf("SPIR-V does not start with the magic number: %x", spirv[:min(1, len(spirv))])
	}

	module, err := d.CreateShaderModule("vs", spirv)
	if err != nil {
		t.Fatalf("CreateShaderModule() = %v", err)
	}
	if d.Stats().ShaderModules != 1 {
		t.Errorf("Stats().ShaderModules = %d", d.Stats().ShaderModules)
	}
	d.DestroyShaderModule(module)
	d.DestroyShaderModule(nil)
	if d.Stats().ShaderModules != 0 {
		t.Errorf("Stats().ShaderModules = %d after destroy", d.Stats().ShaderModules)
	}

	if _, err := CompileWGSL("fn broken( {"); err == nil {
		t.Error("CompileWGSL accepted invalid source")
	}
}

func TestClosedDevice(t *testing.T) {
	d, err := NewHeadless()
	if err != nil {
		t.Fatal(err)
	}
	d.Close()
	d.Close()

	if _, err := d.CreateBuffer("late", gputypes.BufferUsageVertex, []byte{0, 0, 0, 0}); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateBuffer after Close = %v, want ErrClosed", err)
	}
	if _, err := d.CreateTexture2D("late", 1, 1, gputypes.TextureFormatRGBA8Unorm, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateTexture2D after Close = %v, want ErrClosed", err)
	}

	var nilDev *Device
	if _, err := nilDev.CreateShaderModule("x", nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device = %v, want ErrNilDevice", err)
	}
}

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct {
	format gputypes.TextureFormat
	info   gpucontext.AdapterInfo
}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return m.info }

var _ gpucontext.DeviceProvider = (*mockProvider)(nil)

// halMockProvider additionally exposes a real HAL device.
type halMockProvider struct {
	mockProvider
	dev *Device
}

func (m *halMockProvider) HalDevice() any {
	d, _ := m.dev.HAL()
	return d
}

func (m *halMockProvider) HalQueue() any {
	_, q := m.dev.HAL()
	return q
}

func TestFromProvider(t *testing.T) {
	if _, err := FromProvider(&mockProvider{}); !errors.Is(err, ErrNotHAL) {
		t.Fatalf("FromProvider(no HAL) = %v, want ErrNotHAL", err)
	}

	host := newTestDevice(t)
	p := &halMockProvider{
		mockProvider: mockProvider{
			format: gputypes.TextureFormatRGBA8Unorm,
			info:   gpucontext.AdapterInfo{Name: "host gpu", Type: gpucontext.AdapterTypeSoftware},
		},
		dev: host,
	}

	d, err := FromProvider(p)
	if err != nil {
		t.Fatalf("FromProvider() = %v", err)
	}
	if !d.External() {
		t.Error("borrowed device not marked external")
	}
	if got := d.AdapterName(); got != "host gpu" {
		t.Errorf("AdapterName() = %q, want the provider's adapter name", got)
	}
	if d.SurfaceFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat() = %v, want provider format", d.SurfaceFormat())
	}

	b, err := d.CreateBuffer("shared", gputypes.BufferUsageVertex, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	d.DestroyBuffer(b)

	// Closing the borrowed device must leave the host usable.
	d.Close()
	hb, err := host.CreateBuffer("host", gputypes.BufferUsageVertex, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("host device unusable after borrower Close: %v", err)
	}
	host.DestroyBuffer(hb)
}

var errQueueLost = errors.New("queue lost")

// failingQueue rejects every upload.
type failingQueue struct {
	hal.Queue
}

func (failingQueue) WriteBuffer(hal.Buffer, uint64, []byte) error { return errQueueLost }

func (failingQueue) WriteTexture(*hal.ImageCopyTexture, []byte, *hal.ImageDataLayout, *hal.Extent3D) error {
	return errQueueLost
}

// failingQueueProvider lends the host device with a failingQueue.
type failingQueueProvider struct {
	halMockProvider
}

func (m *failingQueueProvider) HalQueue() any {
	_, q := m.dev.HAL()
	return failingQueue{Queue: q}
}

func TestUploadErrorsPropagate(t *testing.T) {
	host := newTestDevice(t)
	d, err := FromProvider(&failingQueueProvider{halMockProvider{dev: host}})
	if err != nil {
		t.Fatalf("FromProvider() = %v", err)
	}
	defer d.Close()

	if _, err := d.CreateBuffer("v", gputypes.BufferUsageVertex, []byte{1, 2, 3, 4}); !errors.Is(err, errQueueLost) {
		t.Errorf("CreateBuffer() = %v, want the queue error", err)
	}
	if _, err := d.CreateTexture2D("t", 1, 1, gputypes.TextureFormatRGBA8Unorm, []byte{1, 2, 3, 4}); !errors.Is(err, errQueueLost) {
		t.Errorf("CreateTexture2D() = %v, want the queue error", err)
	}
	if got := d.Stats(); got.Buffers != 0 || got.Textures != 0 || got.BytesWritten != 0 {
		t.Errorf("Stats() after failed uploads = %+v, want zero", got)
	}

	b, err := d.CreateEmptyBuffer("u", gputypes.BufferUsageUniform, 16)
	if err != nil {
		t.Fatalf("CreateEmptyBuffer() = %v", err)
	}
	defer d.DestroyBuffer(b)
	if err := d.WriteBuffer(b, 0, make([]byte, 16)); !errors.Is(err, errQueueLost) {
		t.Errorf("WriteBuffer() = %v, want the queue error", err)
	}
}

func TestByteHelpers(t *testing.T) {
	if got := Float32Bytes([]float32{1}); len(got) != 4 || got[3] != 0x3f || got[2] != 0x80 {
		t.Errorf("Float32Bytes(1) = %x", got)
	}
	if got := Uint32Bytes([]uint32{0x01020304}); got[0] != 4 || got[3] != 1 {
		t.Errorf("Uint32Bytes = %x", got)
	}
	if got := Vec3Bytes([]math3d.Vec3{{X: 1, Y: 2, Z: 3}, {}}); len(got) != 24 {
		t.Errorf("len(Vec3Bytes) = %d, want 24", len(got))
	}
	if got := Vec2Bytes([]math3d.Vec2{{X: 1, Y: 2}}); len(got) != 8 {
		t.Errorf("len(Vec2Bytes) = %d, want 8", len(got))
	}
	if got := Mat4Bytes(math3d.Identity4()); len(got) != 64 || got[3] != 0x3f {
		t.Errorf("Mat4Bytes(identity) = %x", got)
	}
}
