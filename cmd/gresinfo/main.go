// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command gresinfo inspects scene manifests.
//
//	gresinfo list assets/scene.yaml --kind mesh --glob 'wall_*'
//	gresinfo check assets/scene.toml -v
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gresinfo:", err)
		os.Exit(1)
	}
}
