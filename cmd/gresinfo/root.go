// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/gres"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "gresinfo",
		Short: "Inspect gres scene manifests",
		Long: `gresinfo loads a YAML or TOML scene manifest into fresh registries and
reports what it registers.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				gres.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			gres.SetLogger(nil)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log registry and GPU activity to stderr")
	root.AddCommand(newListCmd(), newCheckCmd())
	return root
}
