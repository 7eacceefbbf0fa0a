// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader provides the Shader resource kind: WGSL programs
// compiled to SPIR-V with naga and, when a device is attached, turned
// into GPU shader modules.
package shader

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/gogpu/gres"
	"github.com/gogpu/gres/gpu"
	"github.com/gogpu/wgpu/hal"
)

// Kind is the registry kind name of shaders.
const Kind = "shader"

// Shader errors.
var (
	// ErrNoSource is returned by Reload for shaders not loaded from a file.
	ErrNoSource = errors.New("shader: no source file")

	// ErrUnknownBuiltin is returned by FromBuiltin for unknown names.
	ErrUnknownBuiltin = errors.New("shader: unknown builtin")
)

//go:embed builtin/*.wgsl
var builtins embed.FS

type (
	// Handle is a shared handle to a registered Shader.
	Handle = gres.Handle[*Shader]
	// Registry is the directory of shaders.
	Registry = gres.Registry[*Shader]
)

// NewRegistry creates an empty shader registry.
func NewRegistry(opts ...gres.Option) *Registry {
	return gres.NewRegistry[*Shader](Kind, opts...)
}

// Stage is a shader pipeline stage.
type Stage string

// Pipeline stages.
const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageCompute  Stage = "compute"
)

// EntryPoint is a function of the shader declared as a stage entry.
type EntryPoint struct {
	Stage Stage
	Name  string
}

// Shader is a compiled WGSL program.
//
// Shader is safe for concurrent use.
type Shader struct {
	name string

	mu     sync.Mutex
	path   string
	source string
	spirv  []uint32
	module hal.ShaderModule
	opts   options
}

// FromSource returns a constructor compiling inline WGSL source.
func FromSource(source string, opts ...Option) gres.Constructor[*Shader] {
	return func(name string) (*Shader, error) {
		s := &Shader{name: name, opts: newOptions(opts)}
		if err := s.build(source); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// FromFile returns a constructor compiling the WGSL file at path.
func FromFile(path string, opts ...Option) gres.Constructor[*Shader] {
	return func(name string) (*Shader, error) {
		s := &Shader{name: name, path: path, opts: newOptions(opts)}
		source, err := readSource(path)
		if err != nil {
			return nil, err
		}
		if err := s.build(source); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// FromBuiltin returns a constructor for one of the shaders shipped with
// this package (see Builtins).
func FromBuiltin(builtin string, opts ...Option) gres.Constructor[*Shader] {
	return func(name string) (*Shader, error) {
		data, err := builtins.ReadFile("builtin/" + builtin + ".wgsl")
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, builtin)
		}
		return FromSource(string(data), opts...)(name)
	}
}

// Builtins lists the names accepted by FromBuiltin.
func Builtins() []string {
	entries, _ := builtins.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name()[:len(e.Name())-len(".wgsl")])
	}
	return names
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("shader: read source: %w", err)
	}
	return string(data), nil
}

// build compiles source and, if a device is attached, replaces the GPU
// module. Nothing is changed on error.
func (s *Shader) build(source string) error {
	spirv, err := gpu.CompileWGSL(source)
	if err != nil {
		return fmt.Errorf("shader: %q: %w", s.name, err)
	}
	var module hal.ShaderModule
	if s.opts.device != nil {
		module, err = s.opts.device.CreateShaderModule(s.label(), spirv)
		if err != nil {
			return fmt.Errorf("shader: %q: %w", s.name, err)
		}
	}
	s.releaseModule()
	s.source, s.spirv, s.module = source, spirv, module
	gres.Logger().Debug("shader: compiled", "name", s.name, "words", len(spirv), "module", module != nil)
	return nil
}

func (s *Shader) label() string {
	if s.opts.label != "" {
		return s.opts.label
	}
	return s.name
}

// Name returns the shader name.
func (s *Shader) Name() string { return s.name }

// Path returns the source file, or "" for inline sources.
func (s *Shader) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Source returns the WGSL source of the current program.
func (s *Shader) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// SPIRV returns the compiled SPIR-V words of the current program.
func (s *Shader) SPIRV() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spirv
}

// Module returns the GPU shader module, or nil without a device.
func (s *Shader) Module() hal.ShaderModule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.module
}

// Recompile compiles new WGSL source in place of the current program.
// On error the current program stays in use.
func (s *Shader) Recompile(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.build(source)
}

// Attach creates the GPU module on dev for the current program,
// replacing a module created earlier.
func (s *Shader) Attach(dev *gpu.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	module, err := dev.CreateShaderModule(s.label(), s.spirv)
	if err != nil {
		return fmt.Errorf("shader: %q: %w", s.name, err)
	}
	s.releaseModule()
	s.module = module
	s.opts.device = dev
	return nil
}

// Reload reads the source file again and recompiles it. On error the
// current program and module stay in use.
func (s *Shader) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return fmt.Errorf("%w: %q", ErrNoSource, s.name)
	}
	source, err := readSource(s.path)
	if err != nil {
		return err
	}
	if err := s.build(source); err != nil {
		gres.Logger().Warn("shader: reload failed, keeping previous program", "name", s.name, "err", err)
		return err
	}
	return nil
}

var entryPointRE = regexp.MustCompile(`@(vertex|fragment|compute)\b[^{]*?\bfn\s+([A-Za-z_][A-Za-z0-9_]*)`)

// EntryPoints returns the stage entry functions declared in the source,
// in declaration order.
func (s *Shader) EntryPoints() []EntryPoint {
	source := s.Source()
	var eps []EntryPoint
	for _, m := range entryPointRE.FindAllStringSubmatch(source, -1) {
		eps = append(eps, EntryPoint{Stage: Stage(m[1]), Name: m[2]})
	}
	return eps
}

// HasEntryPoint reports whether name is declared as an entry of stage.
func (s *Shader) HasEntryPoint(stage Stage, name string) bool {
	return slices.Contains(s.EntryPoints(), EntryPoint{Stage: stage, Name: name})
}

// Destroy frees the GPU module.
func (s *Shader) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseModule()
}

func (s *Shader) releaseModule() {
	if s.module != nil {
		s.opts.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}
