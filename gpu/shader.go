// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	code, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[4*i:])
	}
	return words, nil
}

// CreateShaderModule creates a shader module from SPIR-V words.
func (d *Device) CreateShaderModule(label string, spirv []uint32) (hal.ShaderModule, error) {
	if err := d.lock(); err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %q: %w", label, err)
	}
	d.stats.ShaderModules++
	return module, nil
}

// DestroyShaderModule frees a module created by CreateShaderModule.
// A nil module is ignored.
func (d *Device) DestroyShaderModule(module hal.ShaderModule) {
	if d == nil || module == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed || d.external {
		d.device.DestroyShaderModule(module)
	}
	d.stats.ShaderModules--
}
