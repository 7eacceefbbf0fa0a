// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/gogpu/gres/scene"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check MANIFEST",
		Short: "Load a manifest onto a headless GPU device and report problems",
		Long: `check builds every resource of the manifest on a headless device: shaders
are compiled, textures and meshes uploaded. Every failing entry is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scene.New(scene.WithHeadless())
			if err != nil {
				return err
			}
			defer s.Shutdown()

			loadErr := s.LoadManifest(args[0])

			w := cmd.OutOrStdout()
			counts := map[string]int{}
			for e := range s.Entries() {
				counts[e.Kind]++
			}
			for _, kind := range slices.Sorted(maps.Keys(counts)) {
				fmt.Fprintf(w, "%-12s %d\n", kind, counts[kind])
			}
			st := s.Device().Stats()
			fmt.Fprintf(w, "gpu: %d buffers, %d textures, %d shader modules, %d bytes written\n",
				st.Buffers, st.Textures, st.ShaderModules, st.BytesWritten)

			if loadErr != nil {
				return loadErr
			}
			fmt.Fprintln(w, "ok")
			return nil
		},
	}
}
