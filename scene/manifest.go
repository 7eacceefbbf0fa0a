// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Manifest errors.
var (
	// ErrUnknownFormat is returned for manifest files that are neither YAML
	// nor TOML.
	ErrUnknownFormat = errors.New("scene: unknown manifest format")

	// ErrInvalidVector is returned when a vector field has the wrong length.
	ErrInvalidVector = errors.New("scene: invalid vector")

	// ErrUnknownMeshType is returned for an unsupported mesh type.
	ErrUnknownMeshType = errors.New("scene: unknown mesh type")
)

// Format is a manifest encoding.
type Format string

// Manifest formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Manifest lists the resources of a scene. Paths are relative to the
// manifest file. Entries reference each other by name.
type Manifest struct {
	Textures     []TextureSpec     `yaml:"textures" toml:"textures"`
	Fonts        []FontSpec        `yaml:"fonts" toml:"fonts"`
	Shaders      []ShaderSpec      `yaml:"shaders" toml:"shaders"`
	Materials    []MaterialSpec    `yaml:"materials" toml:"materials"`
	Meshes       []MeshSpec        `yaml:"meshes" toml:"meshes"`
	Drawelements []DrawelementSpec `yaml:"drawelements" toml:"drawelements"`
	Cameras      []CameraSpec      `yaml:"cameras" toml:"cameras"`
	Animations   []AnimationSpec   `yaml:"animations" toml:"animations"`
}

// TextureSpec is an image file.
type TextureSpec struct {
	Name    string `yaml:"name" toml:"name"`
	Path    string `yaml:"path" toml:"path"`
	MaxSize int    `yaml:"max_size,omitempty" toml:"max_size,omitempty"`
}

// FontSpec is a TrueType or OpenType file.
type FontSpec struct {
	Name string `yaml:"name" toml:"name"`
	Path string `yaml:"path" toml:"path"`
}

// ShaderSpec is a WGSL program given by exactly one of Path, Builtin or
// Source.
type ShaderSpec struct {
	Name    string `yaml:"name" toml:"name"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty"`
	Builtin string `yaml:"builtin,omitempty" toml:"builtin,omitempty"`
	Source  string `yaml:"source,omitempty" toml:"source,omitempty"`
}

// MaterialSpec maps texture slots to texture names.
type MaterialSpec struct {
	Name      string               `yaml:"name" toml:"name"`
	BaseColor []float32            `yaml:"base_color,omitempty" toml:"base_color,omitempty"`
	Floats    map[string]float32   `yaml:"floats,omitempty" toml:"floats,omitempty"`
	Vec4s     map[string][]float32 `yaml:"vec4s,omitempty" toml:"vec4s,omitempty"`
	Textures  map[string]string    `yaml:"textures,omitempty" toml:"textures,omitempty"`
}

// MeshSpec is a generated primitive. Type selects the generator; the
// fields it does not use are ignored.
type MeshSpec struct {
	Name     string      `yaml:"name" toml:"name"`
	Type     string      `yaml:"type" toml:"type"`
	Material string      `yaml:"material,omitempty" toml:"material,omitempty"`
	Center   []float32   `yaml:"center,omitempty" toml:"center,omitempty"`
	Size     []float32   `yaml:"size,omitempty" toml:"size,omitempty"`
	Radius   float32     `yaml:"radius,omitempty" toml:"radius,omitempty"`
	Height   float32     `yaml:"height,omitempty" toml:"height,omitempty"`
	Axis     []float32   `yaml:"axis,omitempty" toml:"axis,omitempty"`
	From     []float32   `yaml:"from,omitempty" toml:"from,omitempty"`
	To       []float32   `yaml:"to,omitempty" toml:"to,omitempty"`
	Min      []float32   `yaml:"min,omitempty" toml:"min,omitempty"`
	Max      []float32   `yaml:"max,omitempty" toml:"max,omitempty"`
	Axes     [][]float32 `yaml:"axes,omitempty" toml:"axes,omitempty"`
	Grid     []int       `yaml:"grid,omitempty" toml:"grid,omitempty"`
	Scale    float32     `yaml:"scale,omitempty" toml:"scale,omitempty"`
	Sectors  int         `yaml:"sectors,omitempty" toml:"sectors,omitempty"`
	Stacks   int         `yaml:"stacks,omitempty" toml:"stacks,omitempty"`
}

// DrawelementSpec draws a mesh with a shader.
type DrawelementSpec struct {
	Name      string    `yaml:"name" toml:"name"`
	Mesh      string    `yaml:"mesh" toml:"mesh"`
	Shader    string    `yaml:"shader" toml:"shader"`
	Translate []float32 `yaml:"translate,omitempty" toml:"translate,omitempty"`
	Scale     []float32 `yaml:"scale,omitempty" toml:"scale,omitempty"`
}

// CameraSpec places a camera. Ortho holds left, right, bottom and top of
// an orthographic projection.
type CameraSpec struct {
	Name    string    `yaml:"name" toml:"name"`
	Pos     []float32 `yaml:"pos,omitempty" toml:"pos,omitempty"`
	LookAt  []float32 `yaml:"look_at,omitempty" toml:"look_at,omitempty"`
	Up      []float32 `yaml:"up,omitempty" toml:"up,omitempty"`
	Fov     float32   `yaml:"fov,omitempty" toml:"fov,omitempty"`
	Near    float32   `yaml:"near,omitempty" toml:"near,omitempty"`
	Far     float32   `yaml:"far,omitempty" toml:"far,omitempty"`
	Ortho   []float32 `yaml:"ortho,omitempty" toml:"ortho,omitempty"`
	Current bool      `yaml:"current,omitempty" toml:"current,omitempty"`
}

// AnimationSpec is a camera path.
type AnimationSpec struct {
	Name       string     `yaml:"name" toml:"name"`
	IntervalMS int        `yaml:"interval_ms,omitempty" toml:"interval_ms,omitempty"`
	Nodes      []NodeSpec `yaml:"nodes" toml:"nodes"`
	Play       bool       `yaml:"play,omitempty" toml:"play,omitempty"`
	Current    bool       `yaml:"current,omitempty" toml:"current,omitempty"`
}

// NodeSpec is one camera path node.
type NodeSpec struct {
	Pos    []float32 `yaml:"pos" toml:"pos"`
	LookAt []float32 `yaml:"look_at" toml:"look_at"`
}

// ParseManifest decodes a manifest in the given format. Unknown fields
// are rejected.
func ParseManifest(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scene: parse yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("scene: parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &m, nil
}

// ReadManifest reads and decodes the manifest file at path.
func ReadManifest(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("scene: read manifest: %w", err)
	}
	return ParseManifest(data, format)
}

// Marshal encodes m in the given format.
func (m *Manifest) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(m)
	case FormatTOML:
		return toml.Marshal(m)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
