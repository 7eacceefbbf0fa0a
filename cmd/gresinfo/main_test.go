// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gres"
)

const manifest = `
shaders:
  - name: flat
    builtin: flat
meshes:
  - name: wall_north
    type: cuboid
  - name: wall_south
    type: cuboid
  - name: probe
    type: sphere
drawelements:
  - name: wall_north
    mesh: wall_north
    shader: flat
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	t.Cleanup(func() { gres.SetLogger(nil) })
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	path := writeManifest(t, manifest)
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		count   string
	}{
		{
			name:  "all",
			args:  []string{"list", path},
			want:  []string{"KIND", "drawelement", "wall_north", "probe", "flat"},
			count: "8 resources",
		},
		{
			name:    "kind",
			args:    []string{"list", path, "--kind", "mesh"},
			want:    []string{"wall_north", "wall_south", "probe"},
			notWant: []string{"drawelement", "geometry"},
			count:   "3 resources",
		},
		{
			name:    "glob",
			args:    []string{"list", path, "-k", "mesh", "-g", "wall_*"},
			want:    []string{"wall_north", "wall_south"},
			notWant: []string{"probe"},
			count:   "2 resources",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v\n%s", tt.args, err, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output lacks %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
			if !strings.Contains(out, tt.count) {
				t.Errorf("output lacks %q:\n%s", tt.count, out)
			}
		})
	}
}

func TestListErrors(t *testing.T) {
	path := writeManifest(t, manifest)
	if _, err := run(t, "list", path, "--kind", "sound"); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := run(t, "list", path, "--glob", "[unclosed"); err == nil {
		t.Error("bad glob accepted")
	}
	if _, err := run(t, "list", filepath.Join(t.TempDir(), "scene.json")); err == nil {
		t.Error("unknown manifest format accepted")
	}
	if _, err := run(t, "list"); err == nil {
		t.Error("missing manifest argument accepted")
	}
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", writeManifest(t, manifest))
	if err != nil {
		t.Fatalf("check = %v\n%s", err, out)
	}
	for _, want := range []string{"mesh         3", "1 shader modules", "ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	bad := manifest + `
  - name: broken
    mesh: nowhere
    shader: flat
`
	out, err = run(t, "check", "-v", writeManifest(t, bad))
	if err == nil || !strings.Contains(err.Error(), "nowhere") {
		t.Errorf("check of a dangling reference = %v", err)
	}
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("--verbose produced no debug log:\n%s", out)
	}
}
